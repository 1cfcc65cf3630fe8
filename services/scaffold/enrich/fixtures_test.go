// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package enrich

import (
	"testing"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
)

func candidateWithDeps(name string, deps ...string) *analyzer.FunctionModel {
	fn := &analyzer.FunctionModel{Name: name}
	for _, d := range deps {
		fn.AddDependency(d)
	}
	return fn
}

func TestCategorizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  Category
		ok    bool
	}{
		{"database_session", CategoryStorage, true},
		{"sqlite3.connect", CategoryStorage, true},
		{"requests.get", CategoryClient, true},
		{"http_client", CategoryClient, true},
		{"auth_token", CategorySession, true},
		{"tempfile", CategoryTempFile, true},
		{"json.loads", CategoryData, true},
		{"compute", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := CategorizeToken(tt.token)
			if ok != tt.ok {
				t.Fatalf("CategorizeToken(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("CategorizeToken(%q) = %s, want %s", tt.token, got, tt.want)
			}
		})
	}
}

func TestFixtures_OnePerCategory(t *testing.T) {
	r := NewResolver("function")

	// Two storage tokens must still produce a single database fixture.
	fn := candidateWithDeps("load", "database_session", "db_cursor", "requests.get")
	specs := r.Fixtures(fn)

	if len(specs) != 2 {
		t.Fatalf("expected 2 fixtures, got %d: %+v", len(specs), specs)
	}
	if specs[0].Name != "database_fixture" {
		t.Errorf("first fixture = %q, want database_fixture", specs[0].Name)
	}
	if specs[1].Name != "client_fixture" {
		t.Errorf("second fixture = %q, want client_fixture", specs[1].Name)
	}
	if specs[0].Scope != "function" {
		t.Errorf("scope = %q", specs[0].Scope)
	}
}

func TestFixtures_ParameterDataFixtures(t *testing.T) {
	r := NewResolver("function")
	fn := &analyzer.FunctionModel{
		Name: "transform",
		Params: []analyzer.Param{
			{Name: "records", DeclaredType: "list[dict]"},
			{Name: "frame", DeclaredType: "pd.DataFrame"},
			{Name: "count", DeclaredType: "int"},
		},
	}
	specs := r.Fixtures(fn)
	if len(specs) != 2 {
		t.Fatalf("expected 2 data fixtures, got %d: %+v", len(specs), specs)
	}
	if specs[0].Name != "records_data" {
		t.Errorf("fixture 0 = %q", specs[0].Name)
	}
	if specs[1].Name != "frame_data" {
		t.Errorf("fixture 1 = %q", specs[1].Name)
	}
	// Tabular parameters carry the pandas dependency.
	if len(specs[1].Dependencies) != 1 || specs[1].Dependencies[0] != "pandas" {
		t.Errorf("frame fixture deps = %v", specs[1].Dependencies)
	}
}

func TestFixtures_TabularBeforeSequence(t *testing.T) {
	// Series must resolve tabular even though no container keyword appears.
	r := NewResolver("function")
	fn := &analyzer.FunctionModel{
		Name:   "summarize",
		Params: []analyzer.Param{{Name: "col", DeclaredType: "pd.Series"}},
	}
	specs := r.Fixtures(fn)
	if len(specs) != 1 {
		t.Fatalf("expected 1 fixture, got %d", len(specs))
	}
	found := false
	for _, line := range specs[0].Setup {
		if line == `return pd.DataFrame({"col1": [1, 2], "col2": ["a", "b"]})` {
			found = true
		}
	}
	if !found {
		t.Errorf("expected tabular body, got %v", specs[0].Setup)
	}
}

func TestFixtures_TempFileTeardown(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("write_report", "pathlib.path")
	specs := r.Fixtures(fn)
	if len(specs) != 1 || specs[0].Name != "temp_file_fixture" {
		t.Fatalf("expected temp_file_fixture, got %+v", specs)
	}
	if len(specs[0].Teardown) == 0 {
		t.Error("temp file fixture must carry teardown")
	}
}

func TestModuleFixtures_SharedAcrossCandidates(t *testing.T) {
	r := NewResolver("module")
	candidates := []*analyzer.FunctionModel{
		candidateWithDeps("save", "database_session"),
		candidateWithDeps("load", "db_cursor"),
		candidateWithDeps("fetch", "requests.get"),
	}
	specs := r.ModuleFixtures(candidates)
	if len(specs) != 2 {
		t.Fatalf("expected 2 shared fixtures, got %d: %+v", len(specs), specs)
	}
	if specs[0].Name != "database_fixture" || specs[1].Name != "client_fixture" {
		t.Errorf("fixtures = %s, %s", specs[0].Name, specs[1].Name)
	}
	if specs[0].Scope != "module" {
		t.Errorf("scope = %q", specs[0].Scope)
	}
}

func TestFixtures_Deterministic(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("load", "requests.get", "database_session", "auth_token")
	first := r.Fixtures(fn)
	second := r.Fixtures(fn)
	if len(first) != len(second) {
		t.Fatalf("nondeterministic count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("nondeterministic order at %d: %s vs %s", i, first[i].Name, second[i].Name)
		}
	}
}
