// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration failed validation: %v", err)
	}
	if cfg.CoverageLevel != CoverageComprehensive {
		t.Errorf("expected comprehensive coverage, got %s", cfg.CoverageLevel)
	}
	if cfg.MockLevel != MockComprehensive {
		t.Errorf("expected comprehensive mocks, got %s", cfg.MockLevel)
	}
	if cfg.MaxLinesPerFile != 200 {
		t.Errorf("expected 200 line budget, got %d", cfg.MaxLinesPerFile)
	}
	if cfg.TestNamePrefix != "test_" {
		t.Errorf("expected test_ prefix, got %q", cfg.TestNamePrefix)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"unknown coverage level", func(c *Configuration) { c.CoverageLevel = "maximal" }},
		{"unknown mock level", func(c *Configuration) { c.MockLevel = "all" }},
		{"zero line budget", func(c *Configuration) { c.MaxLinesPerFile = 0 }},
		{"negative line budget", func(c *Configuration) { c.MaxLinesPerFile = -50 }},
		{"empty test prefix", func(c *Configuration) { c.TestNamePrefix = "" }},
		{"unknown fixture scope", func(c *Configuration) { c.FixtureScope = "global" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestCoverageLevel_RankOrdering(t *testing.T) {
	if CoverageHappyPath.Rank() >= CoverageComprehensive.Rank() {
		t.Error("happy_path must rank below comprehensive")
	}
	if CoverageComprehensive.Rank() >= CoverageFull.Rank() {
		t.Error("comprehensive must rank below full")
	}
}

func TestLoadSave_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaffold.yaml")

	cfg := Default()
	cfg.CoverageLevel = CoverageFull
	cfg.IncludePrivate = true
	cfg.MaxLinesPerFile = 120
	cfg.OutputDir = "generated"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.CoverageLevel != CoverageFull {
		t.Errorf("coverage level lost in roundtrip: %s", loaded.CoverageLevel)
	}
	if !loaded.IncludePrivate {
		t.Error("include_private lost in roundtrip")
	}
	if loaded.MaxLinesPerFile != 120 {
		t.Errorf("max lines lost in roundtrip: %d", loaded.MaxLinesPerFile)
	}
	if loaded.OutputDir != "generated" {
		t.Errorf("output dir lost in roundtrip: %q", loaded.OutputDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaffold.yaml")
	cfg := Default()
	cfg.CoverageLevel = "bogus"
	// Save does not validate; Load must.
	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
