// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scaffold orchestrates the test generation pipeline: structural
// analysis, candidate classification, enrichment, case synthesis, body
// rendering, and size-bounded packing. Stages run in a fixed order and
// each consumes only the previous stage's output, so a run over the same
// bytes always produces the same files.
package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/config"
	"github.com/aleutianlabs/scaffold/services/scaffold/enrich"
	"github.com/aleutianlabs/scaffold/services/scaffold/pack"
	"github.com/aleutianlabs/scaffold/services/scaffold/render"
	"github.com/aleutianlabs/scaffold/services/scaffold/synth"
)

const instrumentationName = "github.com/aleutianlabs/scaffold/services/scaffold"

// Result is the full output of one generation run over one source file.
type Result struct {
	// SourcePath is the logical path of the analyzed file.
	SourcePath string

	// Module is the structural model the analyzer produced.
	Module *analyzer.ModuleModel

	// Files are the packed test files, in packing order.
	Files []pack.OutputFile

	// Candidates is the number of symbols selected for generation.
	Candidates int

	// Skipped records symbols the analyzer could not model.
	Skipped []analyzer.SkipRecord
}

// Service wires the pipeline stages behind a single entry point.
//
// Thread Safety: Safe for concurrent use. The analyzer allocates a
// parser per call and every other stage is immutable after construction.
type Service struct {
	cfg      *config.Configuration
	analyzer *analyzer.Analyzer
	resolver *enrich.Resolver
	synth    *synth.Synthesizer
	renderer *render.Renderer
	packer   *pack.Packer
	memo     *memo

	// generateFile is the per-file entry point batch runs go through.
	// Defaults to Generate; tests substitute it to inject failures.
	generateFile func(ctx context.Context, content []byte, logicalPath string) (*Result, error)
}

// NewService builds a Service from a validated configuration.
//
// Inputs:
//   - cfg: Generation settings. Nil falls back to config.Default().
//
// Outputs:
//   - *Service: Ready to use.
//   - error: config.ErrConfiguration when cfg fails validation.
func NewService(cfg *config.Configuration) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	an, err := analyzer.New()
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	renderer, err := render.NewRenderer(cfg.TestNamePrefix)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	packer, err := pack.NewPacker(cfg.MaxLinesPerFile, cfg.SplitLargeFiles, cfg.TestNamePrefix, renderer)
	if err != nil {
		return nil, fmt.Errorf("create packer: %w", err)
	}
	m, err := newMemo(defaultMemoSize)
	if err != nil {
		return nil, fmt.Errorf("create memo: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		analyzer: an,
		resolver: enrich.NewResolver(cfg.FixtureScope),
		synth:    synth.New(cfg.CoverageLevel),
		renderer: renderer,
		packer:   packer,
		memo:     m,
	}
	s.generateFile = s.Generate
	return s, nil
}

// Generate runs the full pipeline over one source file.
//
// Description:
//
//	Parses the content, classifies candidates, attaches fixtures, mocks,
//	and case tables per the configuration, renders test bodies, and
//	packs them into output files. Results are memoized on the content
//	hash; a repeat run over unchanged bytes returns without re-parsing.
//
// Inputs:
//   - ctx: Cancellation checked between stages.
//   - content: Raw source bytes.
//   - logicalPath: Path recorded in the model and the file header.
//
// Outputs:
//   - *Result: The generation output. Never nil on success.
//   - error: analyzer.ErrSyntax for unparseable input, or a ctx error.
func (s *Service) Generate(ctx context.Context, content []byte, logicalPath string) (*Result, error) {
	tracer := otel.GetTracerProvider().Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "scaffold.Generate")
	span.SetAttributes(attribute.String("source.path", logicalPath))
	defer span.End()

	start := time.Now()

	key := memoKey(logicalPath, content)
	if cached, ok := s.memo.get(key); ok {
		memoHitsTotal.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("memo.hit", true))
		return cached, nil
	}
	memoHitsTotal.WithLabelValues("miss").Inc()

	result, err := s.generate(ctx, content, logicalPath)
	generateDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		generateTotal.WithLabelValues("failure").Inc()
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}

	generateTotal.WithLabelValues("success").Inc()
	candidatesTotal.Add(float64(result.Candidates))
	filesEmittedTotal.Add(float64(len(result.Files)))
	span.SetAttributes(
		attribute.Int("scaffold.candidates", result.Candidates),
		attribute.Int("scaffold.files", len(result.Files)),
	)
	span.SetStatus(codes.Ok, "")

	s.memo.put(key, result)
	return result, nil
}

func (s *Service) generate(ctx context.Context, content []byte, logicalPath string) (*Result, error) {
	module, err := s.analyzer.Analyze(ctx, content, logicalPath)
	if err != nil {
		return nil, err
	}

	files, candidates, err := s.synthesize(ctx, module)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "generation complete",
		"path", logicalPath,
		"candidates", len(candidates),
		"skipped", len(module.Skipped),
		"files", len(files))

	return &Result{
		SourcePath: logicalPath,
		Module:     module,
		Files:      files,
		Candidates: len(candidates),
		Skipped:    module.Skipped,
	}, nil
}

// synthesize runs classification through packing over an analyzed module.
func (s *Service) synthesize(ctx context.Context, module *analyzer.ModuleModel) ([]pack.OutputFile, []*analyzer.FunctionModel, error) {
	candidates := analyzer.Classify(module, analyzer.Selection{
		IncludePrivate: s.cfg.IncludePrivate,
		TestNamePrefix: s.cfg.TestNamePrefix,
	})

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("generation cancelled after classification: %w", err)
	}

	moduleImport := modulePath(module.Path)
	units := make([]*render.GeneratedTestUnit, 0, len(candidates))
	for _, fn := range candidates {
		var fixtures []enrich.FixtureSpec
		if s.cfg.GenerateFixtures {
			fixtures = s.resolver.Fixtures(fn)
		}
		mocks := s.resolver.Mocks(fn, s.cfg.MockLevel)

		var specs []synth.ParametrizeSpec
		if s.cfg.GenerateParametrize {
			specs = s.synth.ForCandidate(fn)
		}

		unit, err := s.renderer.Render(fn, moduleImport, fixtures, mocks, specs)
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", fn.QualifiedName(), err)
		}
		units = append(units, unit)
	}

	files, err := s.packer.Pack(units, module.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("pack %s: %w", module.Path, err)
	}

	return files, candidates, nil
}

// Analyze parses Python source into a module model with default analyzer
// settings. Library callers that only need the structural model use this
// instead of building a Service.
func Analyze(ctx context.Context, source []byte, logicalPath string) (*analyzer.ModuleModel, error) {
	an, err := analyzer.New()
	if err != nil {
		return nil, err
	}
	return an.Analyze(ctx, source, logicalPath)
}

// Synthesize generates packed output files from an already analyzed module.
func Synthesize(ctx context.Context, module *analyzer.ModuleModel, cfg *config.Configuration) ([]pack.OutputFile, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return nil, err
	}
	files, _, err := svc.synthesize(ctx, module)
	return files, err
}

// Inspect parses and classifies without generating, for dry-run listing.
func (s *Service) Inspect(ctx context.Context, content []byte, logicalPath string) (*analyzer.ModuleModel, []*analyzer.FunctionModel, error) {
	module, err := s.analyzer.Analyze(ctx, content, logicalPath)
	if err != nil {
		return nil, nil, err
	}
	candidates := analyzer.Classify(module, analyzer.Selection{
		IncludePrivate: s.cfg.IncludePrivate,
		TestNamePrefix: s.cfg.TestNamePrefix,
	})
	return module, candidates, nil
}

// modulePath converts a source file path into a dotted Python import
// path: "pkg/util/math.py" becomes "pkg.util.math".
func modulePath(logicalPath string) string {
	p := strings.TrimSuffix(logicalPath, ".py")
	p = strings.TrimPrefix(p, "./")
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	return strings.ReplaceAll(p, "/", ".")
}
