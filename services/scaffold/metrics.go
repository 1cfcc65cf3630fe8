// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scaffold

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_generate_total",
		Help: "Generation runs by outcome.",
	}, []string{"outcome"})

	generateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scaffold_generate_duration_seconds",
		Help:    "End-to-end generation latency per source file.",
		Buckets: prometheus.DefBuckets,
	})

	candidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scaffold_candidates_total",
		Help: "Candidates selected for test generation.",
	})

	filesEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scaffold_files_emitted_total",
		Help: "Packed test files produced.",
	})

	memoHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_memo_hits_total",
		Help: "Generation memo lookups by result.",
	}, []string{"result"})
)
