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
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aleutianlabs/scaffold/services/scaffold"
	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

const fixtureProject = "../../test/fixtures/sample-python-project"

func TestCollectSources_FromFixtureProject(t *testing.T) {
	sources, err := collectSources(fixtureProject)
	if err != nil {
		t.Fatalf("collectSources: %v", err)
	}

	var names []string
	for _, s := range sources {
		names = append(names, filepath.Base(s.Path))
	}
	sort.Strings(names)

	want := []string{"models.py", "storage.py"}
	if len(names) != len(want) {
		t.Fatalf("sources = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sources = %v, want %v", names, want)
		}
	}
}

func TestCollectSources_SingleFile(t *testing.T) {
	path := filepath.Join(fixtureProject, "app", "models.py")
	sources, err := collectSources(path)
	if err != nil {
		t.Fatalf("collectSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Path != path {
		t.Fatalf("sources = %+v", sources)
	}
	if len(sources[0].Content) == 0 {
		t.Error("fixture content not read")
	}
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app/models.py", true},
		{"app/test_existing.py", false},
		{"app/models_test.py", false},
		{"app/readme.md", false},
	}
	for _, tt := range tests {
		if got := isSourceFile(tt.path); got != tt.want {
			t.Errorf("isSourceFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSkipDir(t *testing.T) {
	for _, name := range []string{"__pycache__", ".git", "venv", "node_modules"} {
		if !skipDir(name) {
			t.Errorf("skipDir(%q) = false", name)
		}
	}
	if skipDir("app") {
		t.Error("skipDir(app) = true")
	}
}

func TestWriteResult_EndToEnd(t *testing.T) {
	svc, err := scaffold.NewService(config.Default())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	sources, err := collectSources(fixtureProject)
	if err != nil {
		t.Fatalf("collectSources: %v", err)
	}
	summary, err := svc.GenerateBatch(context.Background(), sources)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if summary.FilesProcessed != 2 {
		t.Fatalf("processed = %d", summary.FilesProcessed)
	}

	outDir := t.TempDir()
	total := 0
	for _, r := range summary.Results {
		if r == nil {
			continue
		}
		n, err := writeResult(outDir, r, nil)
		if err != nil {
			t.Fatalf("writeResult: %v", err)
		}
		total += n
	}
	if total == 0 {
		t.Fatal("no files written")
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "test_") || !strings.HasSuffix(e.Name(), ".py") {
			t.Errorf("unexpected output file name %q", e.Name())
		}
	}
}

func TestWriteResult_WarnsOnPathCollision(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	svc, err := scaffold.NewService(config.Default())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	source := []byte("def ping():\n    return \"pong\"\n")
	first, err := svc.Generate(context.Background(), source, "a/util.py")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := svc.Generate(context.Background(), source, "b/util.py")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	outDir := t.TempDir()
	seen := make(map[string]string)
	buf.Reset()
	if _, err := writeResult(outDir, first, seen); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	if strings.Contains(buf.String(), "collision") {
		t.Fatalf("unexpected warning on first write: %s", buf.String())
	}
	if _, err := writeResult(outDir, second, seen); err != nil {
		t.Fatalf("writeResult: %v", err)
	}
	if !strings.Contains(buf.String(), "collision") {
		t.Errorf("no collision warning logged: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "a/util.py") {
		t.Errorf("warning missing previous source: %s", buf.String())
	}
}
