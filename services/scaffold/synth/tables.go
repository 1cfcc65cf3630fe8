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

// TableVersion identifies the fixed value tables below. Bump when any
// value changes so snapshot baselines can be regenerated knowingly.
const TableVersion = "v1"

// BaseType is the synthesizer's closed type universe. Unknown and
// unannotated parameters fall back to the string tables.
type BaseType string

const (
	TypeInteger  BaseType = "integer"
	TypeFloat    BaseType = "float"
	TypeString   BaseType = "string"
	TypeBoolean  BaseType = "boolean"
	TypeSequence BaseType = "sequence"
	TypeMapping  BaseType = "mapping"
	TypeUnknown  BaseType = "unknown"
)

// Tier is one coverage tier. Tiers are cumulative: each coverage level
// emits its own tier plus every lower tier.
type Tier string

const (
	TierHappy    Tier = "happy"
	TierEdge     Tier = "edge"
	TierError    Tier = "error"
	TierBoundary Tier = "boundary"
)

// value is one table entry: a Python literal plus its description.
type value struct {
	literal string
	desc    string
}

// happyValues are representative, valid values per base type.
var happyValues = map[BaseType][]value{
	TypeInteger: {
		{"42", "positive integer"},
		{"0", "zero"},
		{"-42", "negative integer"},
	},
	TypeFloat: {
		{"3.14", "positive float"},
		{"0.0", "zero"},
		{"-2.5", "negative float"},
	},
	TypeString: {
		{`"hello"`, "normal string"},
		{`""`, "empty string"},
		{`"a"`, "single character"},
	},
	TypeBoolean: {
		{"True", "true"},
		{"False", "false"},
	},
	TypeSequence: {
		{"[1, 2, 3]", "normal list"},
		{"[]", "empty list"},
		{"[1]", "single item"},
	},
	TypeMapping: {
		{`{"key": "value"}`, "normal dict"},
		{"{}", "empty dict"},
		{`{"a": 1, "b": 2}`, "multiple keys"},
	},
}

// edgeValues are type-specific boundary-adjacent values.
var edgeValues = map[BaseType][]value{
	TypeInteger: {
		{"0", "zero"},
		{"-1", "negative one"},
		{"1", "one"},
		{"999999", "large positive"},
		{"-999999", "large negative"},
	},
	TypeFloat: {
		{"0.0", "zero"},
		{"-1.0", "negative one"},
		{"1.0", "one"},
		{"3.14159", "pi"},
		{`float("inf")`, "positive infinity"},
		{`float("-inf")`, "negative infinity"},
	},
	TypeString: {
		{`""`, "empty string"},
		{`" "`, "whitespace"},
		{`"a"`, "single character"},
		{`"hello" * 100`, "very long string"},
	},
	TypeBoolean: {
		{"True", "true"},
		{"False", "false"},
	},
	TypeSequence: {
		{"[]", "empty list"},
		{"[1]", "single item"},
		{"[1, 2, 3]", "numbers"},
		{`["a", "b", "c"]`, "strings"},
	},
	TypeMapping: {
		{"{}", "empty dict"},
		{`{"key": "value"}`, "single key"},
		{`{"a": 1, "b": 2}`, "multiple keys"},
	},
}

// errorValues carry values of a different base type than declared; every
// case is tagged to expect a type-mismatch failure.
var errorValues = map[BaseType][]value{
	TypeInteger: {
		{"None", "None instead of int"},
		{`"invalid"`, "string instead of int"},
		{"[]", "list instead of int"},
		{"{}", "dict instead of int"},
	},
	TypeFloat: {
		{"None", "None instead of float"},
		{`"invalid"`, "string instead of float"},
		{"[]", "list instead of float"},
		{"{}", "dict instead of float"},
	},
	TypeString: {
		{"None", "None instead of str"},
		{"123", "int instead of str"},
		{"[]", "list instead of str"},
		{"{}", "dict instead of str"},
	},
	TypeBoolean: {
		{"None", "None instead of bool"},
		{`"invalid"`, "string instead of bool"},
		{"123", "int instead of bool"},
		{"[]", "list instead of bool"},
	},
	TypeSequence: {
		{"None", "None instead of list"},
		{`"invalid"`, "string instead of list"},
		{"123", "int instead of list"},
		{"{}", "dict instead of list"},
	},
	TypeMapping: {
		{"None", "None instead of dict"},
		{`"invalid"`, "string instead of dict"},
		{"123", "int instead of dict"},
		{"[]", "list instead of dict"},
	},
}

// boundaryValues are numeric and string extremes. Container types have no
// boundary tier.
var boundaryValues = map[BaseType][]value{
	TypeInteger: {
		{"2147483647", "max 32-bit int"},
		{"-2147483648", "min 32-bit int"},
	},
	TypeFloat: {
		{"1e-10", "very small float"},
		{"1e10", "very large float"},
	},
	TypeString: {
		{`"café"`, "non-ASCII text"},
		{`"!@#$%^&*()"`, "special characters"},
	},
}

// tierTable returns the value table for a tier, falling back to the string
// tables for unknown types.
func tierTable(tier Tier, base BaseType) []value {
	if base == TypeUnknown {
		base = TypeString
	}
	switch tier {
	case TierHappy:
		return happyValues[base]
	case TierEdge:
		return edgeValues[base]
	case TierError:
		return errorValues[base]
	case TierBoundary:
		return boundaryValues[base]
	}
	return nil
}
