// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"strings"
	"testing"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

func TestInferBaseType(t *testing.T) {
	tests := []struct {
		declared string
		want     BaseType
	}{
		{"int", TypeInteger},
		{"Optional[int]", TypeInteger},
		{"float", TypeFloat},
		{"str", TypeString},
		{"bool", TypeBoolean},
		{"List[str]", TypeSequence},
		{"tuple", TypeSequence},
		{"dict[str, int]", TypeMapping},
		{"Mapping[str, Any]", TypeMapping},
		{"", TypeUnknown},
		{"CustomThing", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			if got := InferBaseType(tt.declared); got != tt.want {
				t.Errorf("InferBaseType(%q) = %s, want %s", tt.declared, got, tt.want)
			}
		})
	}
}

func singleParam(declared string) *analyzer.FunctionModel {
	return &analyzer.FunctionModel{
		Name:   "f",
		Params: []analyzer.Param{{Name: "x", DeclaredType: declared}},
	}
}

func TestForCandidate_HappyPathLevel(t *testing.T) {
	s := New(config.CoverageHappyPath)
	specs := s.ForCandidate(singleParam("int"))
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if len(specs[0].Cases) != 3 {
		t.Fatalf("expected 3 happy cases for int, got %d", len(specs[0].Cases))
	}
	for _, c := range specs[0].Cases {
		if !strings.HasPrefix(c.Name, "happy_") {
			t.Errorf("unexpected case %q at happy_path level", c.Name)
		}
		if c.ExpectedError != "" {
			t.Errorf("happy case %q carries an error expectation", c.Name)
		}
	}
}

func TestForCandidate_TiersAreCumulative(t *testing.T) {
	levels := []config.CoverageLevel{
		config.CoverageHappyPath,
		config.CoverageComprehensive,
		config.CoverageFull,
	}
	var prev map[string]struct{}
	for _, level := range levels {
		specs := New(level).ForCandidate(singleParam("int"))
		if len(specs) != 1 {
			t.Fatalf("level %s: expected 1 spec, got %d", level, len(specs))
		}
		names := make(map[string]struct{})
		for _, c := range specs[0].Cases {
			names[c.Name] = struct{}{}
		}
		for name := range prev {
			if _, ok := names[name]; !ok {
				t.Errorf("level %s dropped case %q emitted at a lower level", level, name)
			}
		}
		if prev != nil && len(names) <= len(prev) {
			t.Errorf("level %s did not add cases: %d <= %d", level, len(names), len(prev))
		}
		prev = names
	}
}

func TestForCandidate_ErrorTierTagged(t *testing.T) {
	specs := New(config.CoverageComprehensive).ForCandidate(singleParam("int"))
	sawError := false
	for _, c := range specs[0].Cases {
		if strings.HasPrefix(c.Name, "error_") {
			sawError = true
			if c.ExpectedError != "TypeError" {
				t.Errorf("error case %q expects %q", c.Name, c.ExpectedError)
			}
		} else if c.ExpectedError != "" {
			t.Errorf("non-error case %q carries an error expectation", c.Name)
		}
	}
	if !sawError {
		t.Error("comprehensive level emitted no error cases")
	}
}

func TestForCandidate_BoundaryOnlyAtFull(t *testing.T) {
	comprehensive := New(config.CoverageComprehensive).ForCandidate(singleParam("int"))
	for _, c := range comprehensive[0].Cases {
		if strings.HasPrefix(c.Name, "boundary_") {
			t.Errorf("boundary case %q emitted below full level", c.Name)
		}
	}
	full := New(config.CoverageFull).ForCandidate(singleParam("int"))
	saw := false
	for _, c := range full[0].Cases {
		if strings.HasPrefix(c.Name, "boundary_") {
			saw = true
		}
	}
	if !saw {
		t.Error("full level emitted no boundary cases")
	}
}

func TestForCandidate_CaseNamesUnique(t *testing.T) {
	specs := New(config.CoverageFull).ForCandidate(singleParam("str"))
	seen := make(map[string]struct{})
	for _, c := range specs[0].Cases {
		if _, dup := seen[c.Name]; dup {
			t.Errorf("duplicate case name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	if len(specs[0].IDs) != len(specs[0].Cases) {
		t.Errorf("IDs length %d != cases length %d", len(specs[0].IDs), len(specs[0].Cases))
	}
}

func TestForCandidate_TwoParamCombinations(t *testing.T) {
	fn := &analyzer.FunctionModel{
		Name: "f",
		Params: []analyzer.Param{
			{Name: "a", DeclaredType: "int"},
			{Name: "b", DeclaredType: "str"},
		},
	}
	specs := New(config.CoverageComprehensive).ForCandidate(fn)
	// One spec per parameter plus the combination spec.
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}
	combo := specs[2]
	if combo.ParamName != "a,b" {
		t.Errorf("combo param name = %q", combo.ParamName)
	}
	if len(combo.Cases) != 3 {
		t.Fatalf("expected exactly 3 combination cases, got %d", len(combo.Cases))
	}
	for _, c := range combo.Cases {
		if len(c.Values) != 2 {
			t.Errorf("combination case %q has %d values", c.Name, len(c.Values))
		}
	}
}

func TestForCandidate_ManyParamsSingleCombination(t *testing.T) {
	fn := &analyzer.FunctionModel{
		Name: "f",
		Params: []analyzer.Param{
			{Name: "a", DeclaredType: "int"},
			{Name: "b", DeclaredType: "str"},
			{Name: "c", DeclaredType: "bool"},
			{Name: "d", DeclaredType: "float"},
		},
	}
	specs := New(config.CoverageFull).ForCandidate(fn)
	combo := specs[len(specs)-1]
	if combo.ParamName != "a,b,c,d" {
		t.Errorf("combo param name = %q", combo.ParamName)
	}
	// The cap is a fixed constant, never proportional to parameter count.
	if len(combo.Cases) != 1 {
		t.Errorf("expected exactly 1 all-happy combination, got %d", len(combo.Cases))
	}
}

func TestForCandidate_NoParams(t *testing.T) {
	fn := &analyzer.FunctionModel{Name: "f"}
	if specs := New(config.CoverageFull).ForCandidate(fn); len(specs) != 0 {
		t.Errorf("parameterless candidate produced specs: %+v", specs)
	}
}

func TestForCandidate_UnknownTypeFallsBackToString(t *testing.T) {
	unknown := New(config.CoverageHappyPath).ForCandidate(singleParam("Widget"))
	str := New(config.CoverageHappyPath).ForCandidate(singleParam("str"))
	if len(unknown[0].Cases) != len(str[0].Cases) {
		t.Errorf("unknown type should use string tables: %d vs %d",
			len(unknown[0].Cases), len(str[0].Cases))
	}
	for i := range unknown[0].Cases {
		if unknown[0].Cases[i].Values[0].Literal != str[0].Cases[i].Values[0].Literal {
			t.Errorf("case %d literal differs: %q vs %q", i,
				unknown[0].Cases[i].Values[0].Literal, str[0].Cases[i].Values[0].Literal)
		}
	}
}

func TestHappyLiteral(t *testing.T) {
	if got := HappyLiteral("int"); got != "42" {
		t.Errorf("HappyLiteral(int) = %q", got)
	}
	if got := HappyLiteral("str"); got != `"hello"` {
		t.Errorf("HappyLiteral(str) = %q", got)
	}
	if got := HappyLiteral("bool"); got != "True" {
		t.Errorf("HappyLiteral(bool) = %q", got)
	}
}
