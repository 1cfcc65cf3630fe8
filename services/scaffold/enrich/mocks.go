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
	"strings"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

// MockSpec describes one patch-style mock a generated test applies.
type MockSpec struct {
	// Target is the dotted production symbol being replaced.
	Target string

	// PatchPath is the argument handed to unittest.mock.patch.
	PatchPath string

	// ReturnValue is a Python literal describing the constructed return.
	ReturnValue string

	// MockName is the local variable name bound to the mock.
	MockName string
}

// mockTemplates maps fixture categories to canned patch targets. The time
// category is keyed separately below: time tokens never produce fixtures
// but are always mocked for reproducible tests.
var mockTemplates = map[Category][]MockSpec{
	CategoryStorage: {
		{Target: "database.query", PatchPath: "database.query", ReturnValue: `"mock_result"`},
		{Target: "database.execute", PatchPath: "database.execute", ReturnValue: `"mock_result"`},
		{Target: "database.commit", PatchPath: "database.commit", ReturnValue: "None"},
	},
	CategoryClient: {
		{Target: "requests.get", PatchPath: "requests.get", ReturnValue: `"mock_response"`},
		{Target: "requests.post", PatchPath: "requests.post", ReturnValue: `"mock_response"`},
		{Target: "requests.put", PatchPath: "requests.put", ReturnValue: `"mock_response"`},
		{Target: "requests.delete", PatchPath: "requests.delete", ReturnValue: `"mock_response"`},
	},
	CategoryTempFile: {
		{Target: "builtins.open", PatchPath: "builtins.open", ReturnValue: `"mock_file"`},
		{Target: "os.path.exists", PatchPath: "os.path.exists", ReturnValue: "True"},
		{Target: "os.path.join", PatchPath: "os.path.join", ReturnValue: `"mock_path"`},
	},
}

// timeMocks replace wall-clock and randomness sources so generated tests
// stay reproducible.
var timeMocks = []MockSpec{
	{Target: "datetime.datetime.now", PatchPath: "datetime.datetime.now", ReturnValue: `"mock_datetime"`},
	{Target: "datetime.date.today", PatchPath: "datetime.date.today", ReturnValue: `"mock_date"`},
}

var timeWords = []string{"datetime", "time", "random", "uuid", "hashlib"}

// Mocks resolves the mock specs one candidate needs, gated by the
// configured mock level: none disables mocking, basic emits the first
// template per matched category, comprehensive emits every template.
// Output is deduplicated by target and deterministic.
func (r *Resolver) Mocks(fn *analyzer.FunctionModel, level config.MockLevel) []MockSpec {
	if level == config.MockNone {
		return nil
	}

	matched := make(map[Category]struct{})
	wantTime := false
	for _, token := range fn.Dependencies() {
		lower := strings.ToLower(token)
		for _, w := range timeWords {
			if strings.Contains(lower, w) {
				wantTime = true
				break
			}
		}
		if cat, ok := CategorizeToken(token); ok {
			matched[cat] = struct{}{}
		}
	}

	var specs []MockSpec
	seen := make(map[string]struct{})
	appendSpecs := func(templates []MockSpec) {
		for i, tmpl := range templates {
			if level == config.MockBasic && i > 0 {
				break
			}
			if _, dup := seen[tmpl.Target]; dup {
				continue
			}
			seen[tmpl.Target] = struct{}{}
			tmpl.MockName = "mock_" + strings.ReplaceAll(tmpl.Target, ".", "_")
			specs = append(specs, tmpl)
		}
	}

	for _, p := range categoryPredicates {
		if _, ok := matched[p.category]; !ok {
			continue
		}
		appendSpecs(mockTemplates[p.category])
	}
	if wantTime {
		appendSpecs(timeMocks)
	}

	return specs
}
