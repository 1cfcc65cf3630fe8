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
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Source is one input file for a batch run.
type Source struct {
	Path    string
	Content []byte
}

// BatchSkip records a source file excluded from a batch run.
type BatchSkip struct {
	Path   string
	Reason string
}

// BatchSummary aggregates one batch run.
type BatchSummary struct {
	RunID          string
	FilesProcessed int
	FilesSkipped   int
	SymbolsTested  int
	SymbolsSkipped int

	// Results holds the per-file output in input order. Entries for
	// skipped files are nil.
	Results []*Result

	// Skips lists the skipped files with reasons, in input order.
	Skips []BatchSkip
}

// GenerateBatch runs Generate over many sources concurrently.
//
// Description:
//
//	Files fan out over a bounded worker pool. Per-file failures are
//	isolated: a file that fails at any stage, parse or later, is
//	recorded as a skip and the batch continues with its siblings. Only
//	context cancellation aborts the run. Output order matches input
//	order regardless of completion order.
//
// Inputs:
//   - ctx: Cancels all in-flight work.
//   - sources: Input files. Empty input yields an empty summary.
//
// Outputs:
//   - *BatchSummary: Per-file results plus aggregate counts.
//   - error: Non-nil only on cancellation.
//
// Thread Safety: Safe for concurrent use.
func (s *Service) GenerateBatch(ctx context.Context, sources []Source) (*BatchSummary, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "files", len(sources))
	log.InfoContext(ctx, "batch generation starting")

	summary := &BatchSummary{
		RunID:   runID,
		Results: make([]*Result, len(sources)),
	}

	var mu sync.Mutex
	skips := make([]*BatchSkip, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, runtime.NumCPU())

	for i, src := range sources {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			result, err := s.generateFile(gctx, src.Content, src.Path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.WarnContext(gctx, "skipping file",
					"path", src.Path, "error", err)
				mu.Lock()
				skips[i] = &BatchSkip{Path: src.Path, Reason: err.Error()}
				mu.Unlock()
				return nil
			}
			mu.Lock()
			summary.Results[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, r := range summary.Results {
		if r == nil {
			summary.FilesSkipped++
			if skips[i] != nil {
				summary.Skips = append(summary.Skips, *skips[i])
			}
			continue
		}
		summary.FilesProcessed++
		summary.SymbolsTested += r.Candidates
		summary.SymbolsSkipped += len(r.Skipped)
	}

	log.InfoContext(ctx, "batch generation complete",
		"processed", summary.FilesProcessed,
		"skipped", summary.FilesSkipped,
		"symbols_tested", summary.SymbolsTested,
		"symbols_skipped", summary.SymbolsSkipped)
	return summary, nil
}
