// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns a classified candidate and its attached specs into
// a generated test unit: pytest source text plus the imports it requires.
//
// Rendering is deterministic pure substitution. The only branching is
// tier and role selection; identical inputs yield byte-identical output.
package render

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/enrich"
	"github.com/aleutianlabs/scaffold/services/scaffold/synth"
)

// GeneratedTestUnit is the rendered output for one candidate.
type GeneratedTestUnit struct {
	// Name is the base test name (e.g. "test_add").
	Name string

	// Body is the pytest source text for the unit.
	Body string

	// Imports are the full import statements the unit requires.
	Imports []string

	// Fixtures, Mocks, and Parametrize are the specs attached to the
	// unit; fixtures render at file level during packing.
	Fixtures    []enrich.FixtureSpec
	Mocks       []enrich.MockSpec
	Parametrize []synth.ParametrizeSpec

	// LineCount is the unit's body line count, used by the packer.
	LineCount int
}

// Renderer renders candidates into test units. Templates are parsed once
// at construction.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Renderer struct {
	prefix      string
	happy       *template.Template
	constructor *template.Template
	parametrize *template.Template
	raises      *template.Template
	fixture     *template.Template
}

// NewRenderer creates a Renderer using the given test-name prefix.
func NewRenderer(prefix string) (*Renderer, error) {
	if prefix == "" {
		prefix = "test_"
	}
	funcs := template.FuncMap{
		"join": strings.Join,
	}
	r := &Renderer{prefix: prefix}
	for _, t := range []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"happy", happyTemplate, &r.happy},
		{"constructor", constructorTemplate, &r.constructor},
		{"parametrize", parametrizeTemplate, &r.parametrize},
		{"raises", raisesTemplate, &r.raises},
		{"fixture", fixtureTemplate, &r.fixture},
	} {
		tmpl, err := template.New(t.name).Funcs(funcs).Parse(t.text)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", t.name, err)
		}
		*t.dst = tmpl
	}
	return r, nil
}

// Render produces the GeneratedTestUnit for one candidate.
//
// Inputs:
//   - fn: The classified candidate.
//   - moduleImport: Dotted Python module path of the production source,
//     used for the symbol import.
//   - fixtures, mocks, specs: Enrichment and synthesis output for the
//     candidate, already deterministic.
func (r *Renderer) Render(fn *analyzer.FunctionModel, moduleImport string,
	fixtures []enrich.FixtureSpec, mocks []enrich.MockSpec,
	specs []synth.ParametrizeSpec) (*GeneratedTestUnit, error) {

	var body strings.Builder

	if fn.Role == analyzer.RoleConstructor {
		if err := r.renderConstructor(&body, fn); err != nil {
			return nil, err
		}
	} else {
		if err := r.renderHappy(&body, fn, fixtures, mocks); err != nil {
			return nil, err
		}
	}

	for _, spec := range specs {
		if err := r.renderSpec(&body, fn, spec); err != nil {
			return nil, err
		}
	}

	text := body.String()
	unit := &GeneratedTestUnit{
		Name:        r.testName(fn),
		Body:        text,
		Imports:     r.imports(fn, moduleImport, fixtures, mocks),
		Fixtures:    fixtures,
		Mocks:       mocks,
		Parametrize: specs,
		LineCount:   strings.Count(text, "\n"),
	}
	return unit, nil
}

// testName derives the base generated test name for a candidate.
func (r *Renderer) testName(fn *analyzer.FunctionModel) string {
	if fn.Class == "" {
		return r.prefix + fn.Name
	}
	if fn.Role == analyzer.RoleConstructor {
		return r.prefix + strings.ToLower(fn.Class) + "_init"
	}
	return r.prefix + strings.ToLower(fn.Class) + "_" + fn.Name
}

// docLine builds the one-line docstring for a generated test.
func docLine(fn *analyzer.FunctionModel, suffix string) string {
	return fmt.Sprintf("%s for %s.", suffix, fn.QualifiedName())
}

// renderHappy emits the direct happy-path test with mock patches and
// fixture arguments.
func (r *Renderer) renderHappy(w *strings.Builder, fn *analyzer.FunctionModel,
	fixtures []enrich.FixtureSpec, mocks []enrich.MockSpec) error {

	// Patch decorators apply innermost-first, so mock arguments arrive
	// in reverse declaration order.
	var patches, mockArgs, mockSetup []string
	for _, m := range mocks {
		patches = append(patches, m.PatchPath)
	}
	for i := len(mocks) - 1; i >= 0; i-- {
		mockArgs = append(mockArgs, mocks[i].MockName)
	}
	for _, m := range mocks {
		mockSetup = append(mockSetup, fmt.Sprintf("%s.return_value = %s", m.MockName, m.ReturnValue))
	}
	args := mockArgs
	for _, f := range fixtures {
		args = append(args, f.Name)
	}

	setup, call := r.callShape(fn, happyArgs(fn))

	data := map[string]any{
		"TestName":  r.testName(fn),
		"Doc":       docLine(fn, "Happy path"),
		"Patches":   patches,
		"MockArgs":  args,
		"MockSetup": mockSetup,
		"Setup":     setup,
		"Call":      call,
		"Assert":    assertion(fn),
	}
	if err := r.happy.Execute(w, data); err != nil {
		return fmt.Errorf("render happy path for %s: %w", fn.QualifiedName(), err)
	}
	w.WriteString("\n")
	return nil
}

// renderConstructor emits the direct instantiation test.
func (r *Renderer) renderConstructor(w *strings.Builder, fn *analyzer.FunctionModel) error {
	call := fmt.Sprintf("%s(%s)", fn.Class, strings.Join(happyArgs(fn), ", "))
	data := map[string]any{
		"TestName": r.testName(fn),
		"Doc":      docLine(fn, "Construction"),
		"Call":     call,
	}
	if err := r.constructor.Execute(w, data); err != nil {
		return fmt.Errorf("render constructor for %s: %w", fn.Class, err)
	}
	w.WriteString("\n")
	return nil
}

// renderSpec emits the parametrized tests for one spec, splitting error
// tagged cases into a pytest.raises variant.
func (r *Renderer) renderSpec(w *strings.Builder, fn *analyzer.FunctionModel, spec synth.ParametrizeSpec) error {
	paramNames := strings.Split(spec.ParamName, ",")

	var plain, raising []synth.TestCase
	for _, c := range spec.Cases {
		if c.ExpectedError != "" {
			raising = append(raising, c)
		} else {
			plain = append(plain, c)
		}
	}

	suffix := paramNames[0]
	if len(paramNames) > 1 {
		suffix = "combined"
	}

	if len(plain) > 0 {
		if err := r.renderCaseTable(w, fn, spec, paramNames, plain, suffix, ""); err != nil {
			return err
		}
	}
	if len(raising) > 0 {
		if err := r.renderCaseTable(w, fn, spec, paramNames, raising, suffix+"_invalid", raising[0].ExpectedError); err != nil {
			return err
		}
	}
	return nil
}

// renderCaseTable emits one parametrized test function.
func (r *Renderer) renderCaseTable(w *strings.Builder, fn *analyzer.FunctionModel,
	spec synth.ParametrizeSpec, paramNames []string, cases []synth.TestCase,
	suffix, raises string) error {

	literals := make([]string, 0, len(cases))
	ids := make([]string, 0, len(cases))
	for _, c := range cases {
		literals = append(literals, caseLiteral(c, paramNames))
		ids = append(ids, fmt.Sprintf("%q", c.Name))
	}

	varying := make(map[string]struct{}, len(paramNames))
	for _, n := range paramNames {
		varying[n] = struct{}{}
	}
	setup, call := r.callShape(fn, mixedArgs(fn, varying))

	data := map[string]any{
		"TestName":  r.testName(fn) + "_" + suffix,
		"Doc":       docLine(fn, "Parametrized "+suffix+" cases"),
		"ParamList": spec.ParamName,
		"ParamArgs": strings.Join(paramNames, ", "),
		"Literals":  literals,
		"IDs":       ids,
		"Setup":     setup,
		"Call":      call,
		"Assert":    assertion(fn),
		"Raises":    raises,
	}
	tmpl := r.parametrize
	if raises != "" {
		tmpl = r.raises
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render %s cases for %s: %w", suffix, fn.QualifiedName(), err)
	}
	w.WriteString("\n")
	return nil
}

// caseLiteral renders one case row: the bare literal for a single
// parameter, a tuple for combined cases.
func caseLiteral(c synth.TestCase, paramNames []string) string {
	if len(paramNames) == 1 {
		return c.Values[0].Literal
	}
	parts := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		parts = append(parts, v.Literal)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// happyArgs fills every parameter with its representative valid literal.
func happyArgs(fn *analyzer.FunctionModel) []string {
	args := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		args = append(args, synth.HappyLiteral(p.DeclaredType))
	}
	return args
}

// mixedArgs passes varying parameters by name and fills the rest with
// happy literals.
func mixedArgs(fn *analyzer.FunctionModel, varying map[string]struct{}) []string {
	args := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		if _, ok := varying[p.Name]; ok {
			args = append(args, p.Name)
		} else {
			args = append(args, synth.HappyLiteral(p.DeclaredType))
		}
	}
	return args
}

// callShape builds the setup lines and call expression for a candidate
// according to its role tag.
func (r *Renderer) callShape(fn *analyzer.FunctionModel, args []string) (setup []string, call string) {
	argList := strings.Join(args, ", ")
	switch {
	case fn.Class == "":
		call = fmt.Sprintf("%s(%s)", fn.Name, argList)
	case fn.Role == analyzer.RoleClassMethod, fn.Role == analyzer.RoleStaticMethod:
		call = fmt.Sprintf("%s.%s(%s)", fn.Class, fn.Name, argList)
	case fn.Role == analyzer.RoleConstructor:
		call = fmt.Sprintf("%s(%s)", fn.Class, argList)
	default:
		setup = []string{fmt.Sprintf("instance = %s()", fn.Class)}
		call = fmt.Sprintf("instance.%s(%s)", fn.Name, argList)
	}
	if fn.Async {
		call = fmt.Sprintf("asyncio.run(%s)", call)
	}
	return setup, call
}

// assertion selects the result assertion from the declared return type.
func assertion(fn *analyzer.FunctionModel) string {
	if fn.ReturnType == "None" {
		return "assert result is None"
	}
	return "assert result is not None"
}

// importStatements maps fixture dependency tokens to Python imports.
var importStatements = map[string]string{
	"unittest.mock": "from unittest.mock import MagicMock",
	"tempfile":      "import tempfile",
	"os":            "import os",
	"pandas":        "import pandas as pd",
}

// imports collects the unit's required import statements: the test
// framework, one per referenced production symbol, and one per distinct
// fixture dependency.
func (r *Renderer) imports(fn *analyzer.FunctionModel, moduleImport string,
	fixtures []enrich.FixtureSpec, mocks []enrich.MockSpec) []string {

	set := map[string]struct{}{"import pytest": {}}

	symbol := fn.Name
	if fn.Class != "" {
		symbol = fn.Class
	}
	if moduleImport != "" {
		set[fmt.Sprintf("from %s import %s", moduleImport, symbol)] = struct{}{}
	}
	if fn.Async {
		set["import asyncio"] = struct{}{}
	}
	if len(mocks) > 0 {
		set["from unittest.mock import patch"] = struct{}{}
	}
	for _, f := range fixtures {
		for _, dep := range f.Dependencies {
			if stmt, ok := importStatements[dep]; ok {
				set[stmt] = struct{}{}
			} else {
				set["import "+dep] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for stmt := range set {
		out = append(out, stmt)
	}
	// Packer re-sorts after merging; unit-level order is sorted too so
	// snapshots stay stable.
	sort.Strings(out)
	return out
}

// RenderFixture renders one file-level fixture definition.
func (r *Renderer) RenderFixture(spec enrich.FixtureSpec) (string, error) {
	var b strings.Builder
	if err := r.fixture.Execute(&b, spec); err != nil {
		return "", fmt.Errorf("render fixture %s: %w", spec.Name, err)
	}
	return b.String(), nil
}
