// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import "strings"

// constructorName is the canonical constructor, always a candidate.
const constructorName = "__init__"

// Selection configures candidate classification.
type Selection struct {
	// IncludePrivate admits single-underscore names as candidates.
	IncludePrivate bool

	// TestNamePrefix excludes names already following the test-name
	// convention; tests are not generated for tests.
	TestNamePrefix string
}

// Classify selects the declarations that deserve generated tests.
//
// Description:
//
//	Applies the selection rules in fixed precedence, identically for free
//	functions and methods:
//	  1. The canonical constructor is always included.
//	  2. Dunder names are excluded.
//	  3. Names matching the test-name convention are excluded.
//	  4. Single-underscore names are excluded unless IncludePrivate.
//	  5. Otherwise included.
//
//	Output preserves source declaration order: free functions first in
//	source order, then each class's methods in source order. No side
//	effects on the model.
func Classify(m *ModuleModel, sel Selection) []*FunctionModel {
	var candidates []*FunctionModel
	for _, fn := range m.Functions {
		if shouldTest(fn, sel) {
			candidates = append(candidates, fn)
		}
	}
	for _, cls := range m.Classes {
		for _, method := range cls.Methods {
			if shouldTest(method, sel) {
				candidates = append(candidates, method)
			}
		}
	}
	return candidates
}

// shouldTest applies the classification rules to one declaration.
func shouldTest(fn *FunctionModel, sel Selection) bool {
	name := fn.Name

	if name == constructorName {
		return true
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return false
	}
	if sel.TestNamePrefix != "" && strings.HasPrefix(name, sel.TestNamePrefix) {
		return false
	}
	if strings.HasPrefix(name, "_") && !sel.IncludePrivate {
		return false
	}
	return true
}
