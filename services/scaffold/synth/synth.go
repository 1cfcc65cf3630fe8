// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package synth turns candidate parameters into tiered, parametrized test
// case tables.
//
// Tiers are cumulative: every case emitted at a lower coverage level is
// also emitted at every higher level. Each tier draws from a fixed, versioned
// value table per base type (tables.go); identical inputs always yield
// identical case lists.
package synth

import (
	"fmt"
	"strings"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/config"
)

// Assignment binds one parameter to one Python literal.
type Assignment struct {
	Param   string
	Literal string
}

// TestCase is a single synthesized case. Name is unique within its
// ParametrizeSpec; ExpectedError is the exception type the case must
// raise, or empty.
type TestCase struct {
	Name           string
	Values         []Assignment
	ExpectedResult string
	ExpectedError  string
	Description    string
}

// ParametrizeSpec is the ordered case table for one parameter, or for a
// cross-parameter combination when ParamName lists several names.
type ParametrizeSpec struct {
	ParamName string
	Cases     []TestCase
	IDs       []string
}

// maxPairCombinations caps cross-parameter cases for two-parameter
// candidates; three or more parameters get exactly one all-happy case.
const maxPairCombinations = 3

// InferBaseType maps a declared annotation to the synthesizer's closed
// type universe. Matching is substring-based over the lowercase text so
// Optional[int] and List[str] resolve like their payload types.
func InferBaseType(declared string) BaseType {
	if declared == "" {
		return TypeUnknown
	}
	lower := strings.ToLower(declared)
	switch {
	case strings.Contains(lower, "int"):
		return TypeInteger
	case strings.Contains(lower, "float"):
		return TypeFloat
	case strings.Contains(lower, "str"):
		return TypeString
	case strings.Contains(lower, "bool"):
		return TypeBoolean
	case containsAny(lower, "list", "tuple", "set", "sequence"):
		return TypeSequence
	case containsAny(lower, "dict", "mapping"):
		return TypeMapping
	}
	return TypeUnknown
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Synthesizer builds parametrize specs for one coverage level.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Synthesizer struct {
	level config.CoverageLevel
}

// New creates a Synthesizer for the given coverage level.
func New(level config.CoverageLevel) *Synthesizer {
	return &Synthesizer{level: level}
}

// tiers returns the cumulative tier list enabled at the configured level.
func (s *Synthesizer) tiers() []Tier {
	switch {
	case s.level.Rank() >= config.CoverageFull.Rank():
		return []Tier{TierHappy, TierEdge, TierError, TierBoundary}
	case s.level.Rank() >= config.CoverageComprehensive.Rank():
		return []Tier{TierHappy, TierEdge, TierError}
	default:
		return []Tier{TierHappy}
	}
}

// ForCandidate synthesizes one ParametrizeSpec per parameter, plus one
// cross-parameter combination spec when the candidate has two or more
// parameters.
//
// Case names are <tier>_<index>, zero-based within each tier, unique
// within their spec. Output order is deterministic: parameters in
// declaration order, then the combination spec.
func (s *Synthesizer) ForCandidate(fn *analyzer.FunctionModel) []ParametrizeSpec {
	var specs []ParametrizeSpec

	for _, p := range fn.Params {
		spec := s.forParameter(p)
		if len(spec.Cases) > 0 {
			specs = append(specs, spec)
		}
	}

	if len(fn.Params) >= 2 {
		if combo := s.combinations(fn.Params); len(combo.Cases) > 0 {
			specs = append(specs, combo)
		}
	}

	return specs
}

// forParameter builds the per-parameter tiered case table.
func (s *Synthesizer) forParameter(p analyzer.Param) ParametrizeSpec {
	base := InferBaseType(p.DeclaredType)
	spec := ParametrizeSpec{ParamName: p.Name}

	for _, tier := range s.tiers() {
		for i, v := range tierTable(tier, base) {
			tc := TestCase{
				Name:        fmt.Sprintf("%s_%d", tier, i),
				Values:      []Assignment{{Param: p.Name, Literal: v.literal}},
				Description: v.desc,
			}
			if tier == TierError {
				tc.ExpectedError = "TypeError"
			}
			spec.Cases = append(spec.Cases, tc)
			spec.IDs = append(spec.IDs, tc.Name)
		}
	}

	return spec
}

// combinations builds the cross-parameter spec.
//
// For exactly two parameters: up to three combinations (happy/happy,
// happy/edge, edge/happy). For three or more: exactly one all-happy
// combination. The cap is a fixed design constant, not proportional to
// parameter count.
func (s *Synthesizer) combinations(params []analyzer.Param) ParametrizeSpec {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	spec := ParametrizeSpec{ParamName: strings.Join(names, ",")}

	appendCase := func(idx int, literals []string, desc string) {
		tc := TestCase{
			Name:        fmt.Sprintf("combined_%d", idx),
			Description: desc,
		}
		for i, p := range params {
			tc.Values = append(tc.Values, Assignment{Param: p.Name, Literal: literals[i]})
		}
		spec.Cases = append(spec.Cases, tc)
		spec.IDs = append(spec.IDs, tc.Name)
	}

	if len(params) == 2 {
		h0 := sampleValue(TierHappy, params[0].DeclaredType)
		h1 := sampleValue(TierHappy, params[1].DeclaredType)
		e0 := sampleValue(TierEdge, params[0].DeclaredType)
		e1 := sampleValue(TierEdge, params[1].DeclaredType)
		combos := [][2]string{{h0, h1}, {h0, e1}, {e0, h1}}
		descs := []string{"happy and happy", "happy and edge", "edge and happy"}
		for i := 0; i < maxPairCombinations; i++ {
			appendCase(i, combos[i][:], descs[i])
		}
		return spec
	}

	literals := make([]string, len(params))
	for i, p := range params {
		literals[i] = sampleValue(TierHappy, p.DeclaredType)
	}
	appendCase(0, literals, "all happy")
	return spec
}

// sampleValue returns the first table value of a tier for combination
// building. Every type has at least one happy and one edge value.
func sampleValue(tier Tier, declared string) string {
	table := tierTable(tier, InferBaseType(declared))
	if len(table) == 0 {
		return "None"
	}
	return table[0].literal
}

// HappyLiteral returns the representative valid literal for a declared
// type. The renderer uses it to fill parameters that are not under test.
func HappyLiteral(declared string) string {
	return sampleValue(TierHappy, declared)
}
