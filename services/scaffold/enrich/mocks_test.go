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

	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

func TestMocks_LevelNone(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("load", "database_session", "requests.get")
	if got := r.Mocks(fn, config.MockNone); got != nil {
		t.Errorf("MockNone must produce no mocks, got %+v", got)
	}
}

func TestMocks_LevelBasic(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("load", "database_session", "requests.get")
	got := r.Mocks(fn, config.MockBasic)
	if len(got) != 2 {
		t.Fatalf("basic level should emit one mock per category, got %d: %+v", len(got), got)
	}
	if got[0].Target != "database.query" {
		t.Errorf("mock 0 = %q", got[0].Target)
	}
	if got[1].Target != "requests.get" {
		t.Errorf("mock 1 = %q", got[1].Target)
	}
}

func TestMocks_LevelComprehensive(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("load", "database_session")
	got := r.Mocks(fn, config.MockComprehensive)
	if len(got) != 3 {
		t.Fatalf("comprehensive level should emit every storage mock, got %d", len(got))
	}
	targets := []string{"database.query", "database.execute", "database.commit"}
	for i, want := range targets {
		if got[i].Target != want {
			t.Errorf("mock %d = %q, want %q", i, got[i].Target, want)
		}
	}
}

func TestMocks_TimeSources(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("stamp", "datetime.datetime.now")
	got := r.Mocks(fn, config.MockComprehensive)
	if len(got) != 2 {
		t.Fatalf("expected both time mocks, got %d: %+v", len(got), got)
	}
	if got[0].Target != "datetime.datetime.now" || got[1].Target != "datetime.date.today" {
		t.Errorf("time mocks = %q, %q", got[0].Target, got[1].Target)
	}
}

func TestMocks_NamesDerivedFromTargets(t *testing.T) {
	r := NewResolver("function")
	fn := candidateWithDeps("fetch", "requests.get")
	got := r.Mocks(fn, config.MockBasic)
	if len(got) != 1 {
		t.Fatalf("expected 1 mock, got %d", len(got))
	}
	if got[0].MockName != "mock_requests_get" {
		t.Errorf("mock name = %q", got[0].MockName)
	}
	if got[0].PatchPath != "requests.get" {
		t.Errorf("patch path = %q", got[0].PatchPath)
	}
}

func TestMocks_SessionCategoryHasNoTemplates(t *testing.T) {
	// Session tokens produce fixtures but no canned patch targets.
	r := NewResolver("function")
	fn := candidateWithDeps("login", "auth_token")
	if got := r.Mocks(fn, config.MockComprehensive); len(got) != 0 {
		t.Errorf("expected no mocks for session-only deps, got %+v", got)
	}
}
