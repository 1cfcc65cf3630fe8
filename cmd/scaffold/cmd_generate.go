// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/aleutianlabs/scaffold/services/scaffold"
)

func runGenerateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := scaffold.NewService(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := setupTracing(traceEnabled)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	sources, err := collectSources(args[0])
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no Python sources found under %s", args[0])
	}

	summary, err := svc.GenerateBatch(ctx, sources)
	if err != nil {
		return err
	}

	written := 0
	seen := make(map[string]string)
	for _, r := range summary.Results {
		if r == nil {
			continue
		}
		n, err := writeResult(cfg.OutputDir, r, seen)
		if err != nil {
			return err
		}
		written += n
	}

	fmt.Printf("Processed %d file(s), skipped %d, generated tests for %d symbol(s).\n",
		summary.FilesProcessed, summary.FilesSkipped, summary.SymbolsTested)
	fmt.Printf("Wrote %d test file(s) to %s.\n", written, cfg.OutputDir)
	for _, skip := range summary.Skips {
		fmt.Printf("  skipped %s: %s\n", skip.Path, skip.Reason)
	}
	return nil
}

func runInspectCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := scaffold.NewService(cfg)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	module, candidates, err := svc.Inspect(cmd.Context(), content, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d function(s), %d class(es), %d candidate(s)\n",
		module.Path, len(module.Functions), len(module.Classes), len(candidates))
	for _, fn := range candidates {
		deps := ""
		if d := fn.Dependencies(); len(d) > 0 {
			deps = "  deps: " + strings.Join(d, ", ")
		}
		fmt.Printf("  line %d: %s (%s)%s\n", fn.Line, fn.QualifiedName(), fn.Role, deps)
	}
	for _, skip := range module.Skipped {
		fmt.Printf("  unsupported %s: %s\n", skip.Symbol, skip.Reason)
	}
	return nil
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := scaffold.NewService(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := setupTracing(traceEnabled)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	root := args[0]
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	// Editors fire bursts of write events on save; the limiter collapses
	// them so each burst triggers at most one regeneration per file.
	limiters := make(map[string]*rate.Limiter)
	allow := func(path string) bool {
		l, ok := limiters[path]
		if !ok {
			l = rate.NewLimiter(rate.Every(500*time.Millisecond), 1)
			limiters[path] = l
		}
		return l.Allow()
	}

	slog.Info("watching for changes", "path", root, "output", cfg.OutputDir)
	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !isSourceFile(event.Name) {
				continue
			}
			if !allow(event.Name) {
				continue
			}
			if err := regenerate(ctx, svc, cfg.OutputDir, event.Name); err != nil {
				slog.Error("regeneration failed", "path", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}

func regenerate(ctx context.Context, svc *scaffold.Service, outputDir, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	result, err := svc.Generate(ctx, content, path)
	if err != nil {
		return err
	}
	n, err := writeResult(outputDir, result, nil)
	if err != nil {
		return err
	}
	slog.Info("regenerated", "path", path, "files", n)
	return nil
}

// collectSources gathers Python files under a path. Generated and test
// files are excluded; hidden and cache directories are skipped.
func collectSources(root string) ([]scaffold.Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	var paths []string
	if !info.IsDir() {
		paths = append(paths, root)
	} else {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if isSourceFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sources := make([]scaffold.Source, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		sources = append(sources, scaffold.Source{Path: p, Content: content})
	}
	return sources, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__" ||
		name == "venv" || name == "node_modules"
}

func isSourceFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".py") &&
		!strings.HasPrefix(base, "test_") &&
		!strings.HasSuffix(base, "_test.py")
}

// writeResult writes a result's packed files under the output directory
// and returns the count written. When seen is non-nil it maps output
// paths to the source that produced them; same-stem sources from
// different directories collide on the flat output layout, so a repeat
// path gets a warning before it is overwritten.
func writeResult(outputDir string, r *scaffold.Result, seen map[string]string) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range r.Files {
		if seen != nil {
			if prev, ok := seen[f.Path]; ok {
				slog.Warn("output file name collision, overwriting",
					"file", f.Path,
					"previous_source", prev,
					"source", r.SourcePath)
			}
			seen[f.Path] = r.SourcePath
		}
		dst := filepath.Join(outputDir, f.Path)
		if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", dst, err)
		}
	}
	return len(r.Files), nil
}
