// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package enrich resolves fixture and mock specifications from the
// dependency tokens and parameter shapes of a test candidate.
//
// Resolution is heuristic and table driven: tokens are lowercase-normalized
// and tested against an ordered list of category predicates (first match
// wins); each category maps to exactly one canned, parameterless fixture
// template. Complex parameter shapes additionally yield one data fixture
// per distinct parameter, named deterministically from the parameter name.
package enrich

import (
	"sort"
	"strings"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
)

// FixtureSpec is a reusable, named setup/teardown unit referenced by
// generated tests. Names are deterministic: derived from the category for
// dependency fixtures and from the parameter name for data fixtures.
type FixtureSpec struct {
	Name      string
	Scope     string
	Setup     []string
	Teardown  []string
	Docstring string

	// Dependencies are the Python imports the fixture body needs.
	Dependencies []string
}

// Category identifies a dependency-token category. Order of the predicate
// list below is part of the contract: first match wins.
type Category int

const (
	CategoryStorage Category = iota
	CategoryClient
	CategorySession
	CategoryTempFile
	CategoryData
)

// String returns the canonical category name.
func (c Category) String() string {
	switch c {
	case CategoryStorage:
		return "storage"
	case CategoryClient:
		return "client"
	case CategorySession:
		return "session"
	case CategoryTempFile:
		return "temp_file"
	default:
		return "data"
	}
}

// categoryPredicates is the ordered predicate list for token matching.
// Word lists are substring-matched against the lowercase token.
var categoryPredicates = []struct {
	category Category
	words    []string
}{
	{CategoryStorage, []string{"database", "db", "sql", "orm", "cursor", "pymongo", "psycopg2"}},
	{CategoryClient, []string{"client", "requests", "http", "urllib", "socket", "api"}},
	{CategorySession, []string{"session", "auth", "login", "token"}},
	{CategoryTempFile, []string{"file", "path", "temp", "open", "io", "os", "shutil"}},
	{CategoryData, []string{"data", "mock", "sample", "json", "pickle", "yaml", "csv"}},
}

// CategorizeToken resolves a dependency token to its category.
func CategorizeToken(token string) (Category, bool) {
	lower := strings.ToLower(token)
	for _, p := range categoryPredicates {
		for _, w := range p.words {
			if strings.Contains(lower, w) {
				return p.category, true
			}
		}
	}
	return 0, false
}

// Resolver synthesizes fixture and mock specs for candidates.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Resolver struct {
	scope string
}

// NewResolver creates a Resolver emitting fixtures with the given pytest
// scope ("function", "class", "module", or "session").
func NewResolver(scope string) *Resolver {
	if scope == "" {
		scope = "function"
	}
	return &Resolver{scope: scope}
}

// Fixtures resolves the fixture specs one candidate needs: one canned
// fixture per matched dependency category plus one data fixture per
// distinct complex parameter. Output order is deterministic (categories in
// predicate order, then parameters in declaration order) and deduplicated
// by fixture name.
func (r *Resolver) Fixtures(fn *analyzer.FunctionModel) []FixtureSpec {
	var specs []FixtureSpec

	matched := make(map[Category]struct{})
	for _, token := range fn.Dependencies() {
		if cat, ok := CategorizeToken(token); ok {
			matched[cat] = struct{}{}
		}
	}
	cats := make([]Category, 0, len(matched))
	for cat := range matched {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		specs = append(specs, r.categoryFixture(cat))
	}

	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		seen[s.Name] = struct{}{}
	}
	for _, p := range fn.Params {
		if shape, ok := complexShape(p.DeclaredType); ok {
			spec := r.parameterFixture(p.Name, shape)
			if _, dup := seen[spec.Name]; dup {
				continue
			}
			seen[spec.Name] = struct{}{}
			specs = append(specs, spec)
		}
	}

	return specs
}

// ModuleFixtures accumulates fixtures across a candidate list and
// deduplicates by name, preserving first-seen order, so two candidates
// needing storage share one fixture.
func (r *Resolver) ModuleFixtures(candidates []*analyzer.FunctionModel) []FixtureSpec {
	var out []FixtureSpec
	seen := make(map[string]struct{})
	for _, fn := range candidates {
		for _, spec := range r.Fixtures(fn) {
			if _, dup := seen[spec.Name]; dup {
				continue
			}
			seen[spec.Name] = struct{}{}
			out = append(out, spec)
		}
	}
	return out
}

// categoryFixture returns the canned, parameterless fixture template for a
// category. Bodies follow pytest conventions: plain return for mocked
// resources, yield plus teardown for real temporary resources.
func (r *Resolver) categoryFixture(cat Category) FixtureSpec {
	switch cat {
	case CategoryStorage:
		return FixtureSpec{
			Name:         "database_fixture",
			Scope:        r.scope,
			Setup:        []string{"db = MagicMock()", "return db"},
			Docstring:    "Provides a mocked database connection.",
			Dependencies: []string{"unittest.mock"},
		}
	case CategoryClient:
		return FixtureSpec{
			Name:         "client_fixture",
			Scope:        r.scope,
			Setup:        []string{"client = MagicMock()", "return client"},
			Docstring:    "Provides a mocked HTTP client.",
			Dependencies: []string{"unittest.mock"},
		}
	case CategorySession:
		return FixtureSpec{
			Name:         "session_fixture",
			Scope:        r.scope,
			Setup:        []string{"session = MagicMock()", "return session"},
			Docstring:    "Provides a mocked authenticated session.",
			Dependencies: []string{"unittest.mock"},
		}
	case CategoryTempFile:
		return FixtureSpec{
			Name: "temp_file_fixture",
			Scope: r.scope,
			Setup: []string{
				"handle = tempfile.NamedTemporaryFile(delete=False)",
				"handle.close()",
				"yield handle.name",
			},
			Teardown:     []string{"os.unlink(handle.name)"},
			Docstring:    "Provides a temporary file path, removed on teardown.",
			Dependencies: []string{"tempfile", "os"},
		}
	default:
		return FixtureSpec{
			Name:      "mock_data_fixture",
			Scope:     r.scope,
			Setup:     []string{`return {"id": 1, "name": "test", "value": 42}`},
			Docstring: "Provides generic structured test data.",
		}
	}
}

// paramShape describes a complex declared parameter type.
type paramShape int

const (
	shapeMapping paramShape = iota
	shapeSequence
	shapeTabular
)

// complexShape reports whether a declared type needs an auxiliary data
// fixture. Tabular is checked first: DataFrame annotations also mention no
// container keyword, but Series/ndarray must not fall through to sequence.
func complexShape(declared string) (paramShape, bool) {
	if declared == "" {
		return 0, false
	}
	switch {
	case containsAny(declared, "DataFrame", "Series", "ndarray"):
		return shapeTabular, true
	case containsAny(strings.ToLower(declared), "dict", "mapping"):
		return shapeMapping, true
	case containsAny(strings.ToLower(declared), "list", "tuple", "set", "sequence"):
		return shapeSequence, true
	}
	return 0, false
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parameterFixture synthesizes the data fixture for one complex parameter.
func (r *Resolver) parameterFixture(param string, shape paramShape) FixtureSpec {
	spec := FixtureSpec{
		Name:      param + "_data",
		Scope:     r.scope,
		Docstring: "Provides test data for the " + param + " parameter.",
	}
	switch shape {
	case shapeMapping:
		spec.Setup = []string{`return {"key": "value", "id": 1}`}
	case shapeSequence:
		spec.Setup = []string{`return ["item1", "item2", "item3"]`}
	case shapeTabular:
		spec.Setup = []string{
			"import pandas as pd",
			`return pd.DataFrame({"col1": [1, 2], "col2": ["a", "b"]})`,
		}
		spec.Dependencies = []string{"pandas"}
	}
	return spec
}
