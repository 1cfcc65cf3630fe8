// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aleutianlabs/scaffold/services/scaffold/analyzer"

var (
	metricsOnce       sync.Once
	analyzeDuration   metric.Float64Histogram
	analyzeSymbols    metric.Int64Counter
	analyzeFailures   metric.Int64Counter
	analyzeInitFailed bool
)

// initMetrics lazily creates the analyzer instruments. Instrument creation
// errors disable recording rather than failing analysis.
func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		var err error
		analyzeDuration, err = meter.Float64Histogram("scaffold.analyze.duration",
			metric.WithDescription("Structural analysis duration in seconds"),
			metric.WithUnit("s"))
		if err != nil {
			analyzeInitFailed = true
			return
		}
		analyzeSymbols, err = meter.Int64Counter("scaffold.analyze.symbols",
			metric.WithDescription("Declarations extracted per analysis"))
		if err != nil {
			analyzeInitFailed = true
			return
		}
		analyzeFailures, err = meter.Int64Counter("scaffold.analyze.failures",
			metric.WithDescription("Failed analyses"))
		if err != nil {
			analyzeInitFailed = true
		}
	})
}

// startAnalyzeSpan opens a tracing span around one structural analysis.
func startAnalyzeSpan(ctx context.Context, logicalPath string, sizeBytes int) (context.Context, oteltrace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, "analyzer.Analyze",
		oteltrace.WithAttributes(
			attribute.String("source.path", logicalPath),
			attribute.Int("source.size_bytes", sizeBytes),
		))
}

// setAnalyzeSpanResult attaches extraction counts to the span.
func setAnalyzeSpanResult(span oteltrace.Span, functions, classes, skipped int) {
	span.SetAttributes(
		attribute.Int("result.functions", functions),
		attribute.Int("result.classes", classes),
		attribute.Int("result.skipped", skipped),
	)
}

// recordAnalyzeMetrics records per-analysis instruments.
func recordAnalyzeMetrics(ctx context.Context, duration time.Duration, symbols int, success bool) {
	initMetrics()
	if analyzeInitFailed {
		return
	}
	status := "ok"
	if !success {
		status = "error"
		analyzeFailures.Add(ctx, 1)
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	analyzeDuration.Record(ctx, duration.Seconds(), attrs)
	if symbols > 0 {
		analyzeSymbols.Add(ctx, int64(symbols), attrs)
	}
}
