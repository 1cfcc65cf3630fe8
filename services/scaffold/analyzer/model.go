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

import (
	"fmt"
	"sort"
)

// Role classifies how a callable is invoked. It is resolved exactly once at
// parse time from the decorator vocabulary and never re-matched downstream.
type Role int

const (
	// RolePlain is a free function or a regular instance method.
	RolePlain Role = iota
	// RoleClassMethod is a method decorated with @classmethod.
	RoleClassMethod
	// RoleStaticMethod is a method decorated with @staticmethod.
	RoleStaticMethod
	// RoleConstructor is the canonical constructor (__init__).
	RoleConstructor
)

// String returns the canonical name for the role.
func (r Role) String() string {
	switch r {
	case RoleClassMethod:
		return "classmethod"
	case RoleStaticMethod:
		return "staticmethod"
	case RoleConstructor:
		return "constructor"
	default:
		return "plain"
	}
}

// Param is one declared parameter of a callable. DeclaredType is the raw
// annotation text ("int", "Dict[str, int]") or empty when unannotated.
type Param struct {
	Name         string
	DeclaredType string
}

// FunctionModel describes one function or method extracted from source.
//
// A FunctionModel is owned exclusively by its enclosing ModuleModel or
// ClassModel and is never shared across analyses.
type FunctionModel struct {
	// Name is the declared identifier.
	Name string

	// Params are the declared parameters in source order. The implicit
	// self/cls receiver is stripped during extraction.
	Params []Param

	// ReturnType is the raw return annotation text, or empty.
	ReturnType string

	// Docstring is the first string expression of the body, or empty.
	Docstring string

	// Role is the invocation shape, resolved at parse time.
	Role Role

	// Decorators are decorator names in declaration order.
	Decorators []string

	// Class is the enclosing class name, or empty for a free function.
	Class string

	// Async marks `async def` declarations.
	Async bool

	// Line is the 1-based source line of the declaration.
	Line int

	deps map[string]struct{}
}

// AddDependency records a detected dependency token on the function.
func (f *FunctionModel) AddDependency(token string) {
	if token == "" {
		return
	}
	if f.deps == nil {
		f.deps = make(map[string]struct{})
	}
	f.deps[token] = struct{}{}
}

// Dependencies returns the function's dependency tokens, sorted for
// deterministic downstream iteration.
func (f *FunctionModel) Dependencies() []string {
	out := make([]string, 0, len(f.deps))
	for t := range f.deps {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasDependency reports whether the token was detected on this function.
func (f *FunctionModel) HasDependency(token string) bool {
	_, ok := f.deps[token]
	return ok
}

// QualifiedName returns Class.Name for methods and Name for free functions.
func (f *FunctionModel) QualifiedName() string {
	if f.Class != "" {
		return f.Class + "." + f.Name
	}
	return f.Name
}

// ClassModel describes one class declaration and its methods.
type ClassModel struct {
	Name       string
	Methods    []*FunctionModel
	Bases      []string
	Decorators []string
	Docstring  string
	Line       int

	deps map[string]struct{}
}

// AddDependency records a dependency token aggregated from the class body.
func (c *ClassModel) AddDependency(token string) {
	if token == "" {
		return
	}
	if c.deps == nil {
		c.deps = make(map[string]struct{})
	}
	c.deps[token] = struct{}{}
}

// Dependencies returns the class's aggregated dependency tokens, sorted.
func (c *ClassModel) Dependencies() []string {
	out := make([]string, 0, len(c.deps))
	for t := range c.deps {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SkipRecord notes a declaration the analyzer recognized but could not
// model. Skips are recorded, never silently dropped.
type SkipRecord struct {
	Symbol string
	Reason string
}

// ModuleModel is the typed model of one analyzed source unit.
//
// Declaration order in Functions and Classes matches source order; that
// order later drives deterministic packing. Built fresh per Analyze call
// and never persisted.
type ModuleModel struct {
	// Path is the logical path the caller supplied for the source unit.
	Path string

	// Docstring is the module-level docstring, or empty.
	Docstring string

	// Functions are free functions in source order.
	Functions []*FunctionModel

	// Classes are class declarations in source order.
	Classes []*ClassModel

	// Skipped lists recognized-but-unmodeled declarations.
	Skipped []SkipRecord

	deps map[string]struct{}
}

// AddDependency records a module-level dependency token.
func (m *ModuleModel) AddDependency(token string) {
	if token == "" {
		return
	}
	if m.deps == nil {
		m.deps = make(map[string]struct{})
	}
	m.deps[token] = struct{}{}
}

// Dependencies returns all dependency tokens detected in the module, sorted.
func (m *ModuleModel) Dependencies() []string {
	out := make([]string, 0, len(m.deps))
	for t := range m.deps {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate checks structural invariants: candidate-visible names are unique
// within the module and methods carry their class name.
func (m *ModuleModel) Validate() error {
	seen := make(map[string]struct{}, len(m.Functions))
	for _, fn := range m.Functions {
		if _, dup := seen[fn.Name]; dup {
			return fmt.Errorf("duplicate function name %q", fn.Name)
		}
		seen[fn.Name] = struct{}{}
		if fn.Class != "" {
			return fmt.Errorf("free function %q carries class %q", fn.Name, fn.Class)
		}
	}
	for _, cls := range m.Classes {
		methodSeen := make(map[string]struct{}, len(cls.Methods))
		for _, method := range cls.Methods {
			if method.Class != cls.Name {
				return fmt.Errorf("method %q not attached to class %q", method.Name, cls.Name)
			}
			if _, dup := methodSeen[method.Name]; dup {
				return fmt.Errorf("duplicate method name %q in class %q", method.Name, cls.Name)
			}
			methodSeen[method.Name] = struct{}{}
		}
	}
	return nil
}
