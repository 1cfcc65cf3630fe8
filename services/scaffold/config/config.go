// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config defines the generator configuration record.
//
// A Configuration is constructed exactly once by the caller (CLI, library
// embedder) and passed by reference into the pipeline. It is never mutated
// after construction; Validate must be called before any file is processed.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration indicates an invalid Configuration. It is raised before
// any source file is processed and is fatal for the whole run.
var ErrConfiguration = errors.New("invalid configuration")

// CoverageLevel selects how many test-case tiers the synthesizer emits.
//
// Levels are cumulative and strictly monotonic: every case emitted at a
// lower level is also emitted at every higher level.
type CoverageLevel string

const (
	// CoverageHappyPath emits only representative valid-input cases.
	CoverageHappyPath CoverageLevel = "happy_path"
	// CoverageComprehensive adds edge cases and type-mismatch error cases.
	CoverageComprehensive CoverageLevel = "comprehensive"
	// CoverageFull adds boundary cases (numeric/string extremes).
	CoverageFull CoverageLevel = "full"
)

// Rank returns the ordinal position of the level for monotonic comparison.
// Higher rank means a superset of generated cases.
func (c CoverageLevel) Rank() int {
	switch c {
	case CoverageHappyPath:
		return 0
	case CoverageComprehensive:
		return 1
	case CoverageFull:
		return 2
	default:
		return -1
	}
}

// MockLevel selects how aggressively external dependencies are mocked.
type MockLevel string

const (
	// MockNone disables mock generation entirely.
	MockNone MockLevel = "none"
	// MockBasic emits one mock per detected dependency category.
	MockBasic MockLevel = "basic"
	// MockComprehensive emits every known mock for each detected category.
	MockComprehensive MockLevel = "comprehensive"
)

// Configuration is the flat generator configuration record.
//
// Description:
//
//	Every recognized option is an explicit typed field with a documented
//	default; there are no optional map keys. Construct via Default and
//	override fields, or load from YAML via Load.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Configuration struct {
	// IncludePrivate includes single-underscore names as test candidates.
	IncludePrivate bool `yaml:"include_private"`

	// CoverageLevel selects the cumulative test-case tiers to synthesize.
	CoverageLevel CoverageLevel `yaml:"coverage_level" validate:"oneof=happy_path comprehensive full"`

	// MockLevel selects how aggressively dependencies are mocked.
	MockLevel MockLevel `yaml:"mock_level" validate:"oneof=none basic comprehensive"`

	// GenerateFixtures enables fixture synthesis from dependency tokens.
	GenerateFixtures bool `yaml:"generate_fixtures"`

	// GenerateParametrize enables tiered parametrized case tables.
	GenerateParametrize bool `yaml:"generate_parametrize"`

	// MaxLinesPerFile is the packing budget per output file. A file may
	// exceed it only when it holds exactly one oversized unit.
	MaxLinesPerFile int `yaml:"max_lines_per_file" validate:"gt=0"`

	// SplitLargeFiles enables bin packing into multiple output files.
	// When false, all units land in a single file regardless of budget.
	SplitLargeFiles bool `yaml:"split_large_files"`

	// TestNamePrefix is the naming convention for generated tests and the
	// exclusion pattern for already-test functions.
	TestNamePrefix string `yaml:"test_name_prefix" validate:"required"`

	// FixtureScope is the pytest scope attached to generated fixtures.
	FixtureScope string `yaml:"fixture_scope" validate:"oneof=function class module session"`

	// OutputDir is where the CLI writer persists output files. The core
	// pipeline never touches it.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the documented default configuration.
func Default() *Configuration {
	return &Configuration{
		IncludePrivate:      false,
		CoverageLevel:       CoverageComprehensive,
		MockLevel:           MockComprehensive,
		GenerateFixtures:    true,
		GenerateParametrize: true,
		MaxLinesPerFile:     200,
		SplitLargeFiles:     true,
		TestNamePrefix:      "test_",
		FixtureScope:        "function",
		OutputDir:           "tests",
	}
}

var validate = validator.New()

// Validate checks the configuration and returns a wrapped ErrConfiguration
// on the first violation. It must be called before any file is processed.
func (c *Configuration) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil configuration", ErrConfiguration)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrConfiguration, f.Field(), f.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Load reads a YAML configuration file, overlaying it on Default.
//
// Outputs:
//   - *Configuration: The merged, validated configuration.
//   - error: Wrapped ErrConfiguration for unreadable or invalid files.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(cfg *Configuration, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
