// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer converts raw Python source text into a typed module
// model: functions, classes with attached methods, parameter and return
// annotations, decorators resolved to role tags, docstrings, and dependency
// tokens detected against a curated vocabulary.
//
// Declaration order in the model matches source order; that order drives
// deterministic packing downstream.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	// DefaultMaxFileSize bounds the source size the analyzer accepts.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// warnFileSize triggers a structured warning for large inputs.
	warnFileSize = 1 * 1024 * 1024

	// maxWalkDepth bounds recursive body walks on pathological nesting.
	maxWalkDepth = 200
)

// Option configures an Analyzer instance.
type Option func(*Analyzer)

// WithMaxFileSize sets the maximum source size the analyzer will accept.
func WithMaxFileSize(bytes int64) Option {
	return func(a *Analyzer) {
		if bytes > 0 {
			a.maxFileSize = bytes
		}
	}
}

// WithVocabulary replaces the embedded dependency-token vocabulary.
func WithVocabulary(v *Vocabulary) Option {
	return func(a *Analyzer) {
		if v != nil {
			a.vocab = v
		}
	}
}

// Analyzer is the structural parser for Python source units.
//
// Description:
//
//	Analyzer uses tree-sitter to parse Python source and extract a typed
//	ModuleModel. Each Analyze call creates its own tree-sitter parser
//	instance internally.
//
// Thread Safety:
//
//	Analyzer instances are safe for concurrent use. Multiple goroutines
//	may call Analyze simultaneously on the same instance.
type Analyzer struct {
	maxFileSize int64
	vocab       *Vocabulary
}

// New creates an Analyzer with the given options.
//
// Outputs:
//   - *Analyzer: Configured analyzer, never nil.
//   - error: Non-nil only if the embedded vocabulary fails to parse.
func New(opts ...Option) (*Analyzer, error) {
	vocab, err := DefaultVocabulary()
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		maxFileSize: DefaultMaxFileSize,
		vocab:       vocab,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze parses Python source into a ModuleModel.
//
// Description:
//
//	Walks the declaration tree recording function and class boundaries,
//	parameter names and annotations, return annotations, decorators
//	(resolved to role tags against a closed vocabulary), and docstrings.
//	Dependency tokens are detected from call targets, attribute-access
//	roots, and import paths. Methods attach to their enclosing class and
//	are never emitted as free functions.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing.
//   - content: Raw Python source bytes. Must be valid UTF-8.
//   - logicalPath: Path used for reporting and output naming.
//
// Outputs:
//   - *ModuleModel: The typed model. Never nil on success.
//   - error: Wrapped ErrSyntax for malformed, oversized, or non-UTF-8
//     input; context errors on cancellation. Catchable per file so a
//     multi-file batch continues with siblings.
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) Analyze(ctx context.Context, content []byte, logicalPath string) (*ModuleModel, error) {
	ctx, span := startAnalyzeSpan(ctx, logicalPath, len(content))
	defer span.End()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("analyze canceled before start: %w", err)
	}

	if int64(len(content)) > a.maxFileSize {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: %w: size %d exceeds limit %d",
			ErrSyntax, ErrFileTooLarge, len(content), a.maxFileSize)
	}

	if len(content) > warnFileSize {
		slog.Warn("analyzing large file",
			slog.String("file", logicalPath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: %w", ErrSyntax, ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: tree-sitter: %v", ErrSyntax, err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("analyze canceled after parse: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: tree-sitter returned nil root", ErrSyntax)
	}
	if root.HasError() {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: source contains syntax errors (%s)", ErrSyntax, logicalPath)
	}

	model := &ModuleModel{Path: logicalPath}

	model.Docstring = a.extractModuleDocstring(root, content)
	a.extractImportDependencies(root, content, model)

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			a.appendFunction(child, content, nil, model)
		case "class_definition":
			a.appendClass(child, content, nil, model)
		case "decorated_definition":
			a.appendDecorated(child, content, model)
		}
	}

	if err := model.Validate(); err != nil {
		recordAnalyzeMetrics(ctx, time.Since(start), 0, false)
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	symbols := len(model.Functions)
	for _, cls := range model.Classes {
		symbols += 1 + len(cls.Methods)
	}
	setAnalyzeSpanResult(span, len(model.Functions), len(model.Classes), len(model.Skipped))
	recordAnalyzeMetrics(ctx, time.Since(start), symbols, true)

	return model, nil
}

// appendDecorated routes a decorated_definition to its inner declaration.
func (a *Analyzer) appendDecorated(node *sitter.Node, content []byte, model *ModuleModel) {
	decorators := extractDecorators(node, content)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_definition":
			a.appendFunction(child, content, decorators, model)
		case "class_definition":
			a.appendClass(child, content, decorators, model)
		}
	}
}

// appendFunction extracts one free function and records it on the model.
// A redefinition of an already recorded name keeps the first declaration
// and skips the later one.
func (a *Analyzer) appendFunction(node *sitter.Node, content []byte, decorators []string, model *ModuleModel) {
	fn, err := a.buildFunction(node, content, decorators, "")
	if err != nil {
		model.Skipped = append(model.Skipped, SkipRecord{
			Symbol: fmt.Sprintf("function@line:%d", int(node.StartPoint().Row+1)),
			Reason: err.Error(),
		})
		return
	}
	for _, prev := range model.Functions {
		if prev.Name == fn.Name {
			model.Skipped = append(model.Skipped, SkipRecord{
				Symbol: fmt.Sprintf("%s@line:%d", fn.Name, fn.Line),
				Reason: fmt.Sprintf("%v: redefinition of %q", ErrUnsupportedConstruct, fn.Name),
			})
			return
		}
	}
	for _, tok := range fn.Dependencies() {
		model.AddDependency(tok)
	}
	model.Functions = append(model.Functions, fn)
}

// appendClass extracts one class declaration with its methods.
func (a *Analyzer) appendClass(node *sitter.Node, content []byte, decorators []string, model *ModuleModel) {
	var name string
	var bases []string
	var body *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = nodeText(child, content)
		case "argument_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				arg := child.Child(j)
				switch arg.Type() {
				case "identifier":
					bases = append(bases, nodeText(arg, content))
				case "attribute":
					// Qualified bases like generic.Base keep the bare leaf
					// name for readability downstream.
					full := nodeText(arg, content)
					if idx := strings.LastIndex(full, "."); idx >= 0 {
						bases = append(bases, full[idx+1:])
					} else {
						bases = append(bases, full)
					}
				}
			}
		case "block":
			body = child
		}
	}

	if name == "" {
		model.Skipped = append(model.Skipped, SkipRecord{
			Symbol: fmt.Sprintf("class@line:%d", int(node.StartPoint().Row+1)),
			Reason: ErrUnsupportedConstruct.Error() + ": class without a name",
		})
		return
	}

	cls := &ClassModel{
		Name:       name,
		Bases:      bases,
		Decorators: decorators,
		Line:       int(node.StartPoint().Row + 1),
	}

	if body != nil {
		cls.Docstring = extractDocstring(body, content)
		a.extractClassMethods(body, content, cls, model)
	}

	for _, tok := range cls.Dependencies() {
		model.AddDependency(tok)
	}
	model.Classes = append(model.Classes, cls)
}

// extractClassMethods walks a class body attaching methods to the model.
func (a *Analyzer) extractClassMethods(body *sitter.Node, content []byte, cls *ClassModel, model *ModuleModel) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			a.appendMethod(child, content, nil, cls, model)
		case "decorated_definition":
			decorators := extractDecorators(child, content)
			for j := 0; j < int(child.ChildCount()); j++ {
				inner := child.Child(j)
				if inner.Type() == "function_definition" {
					a.appendMethod(inner, content, decorators, cls, model)
				}
			}
		}
	}
}

// appendMethod extracts one method and attaches it to its class.
// Property getter/setter pairs declare the same name twice; the first
// declaration wins and later ones are skipped, not errored.
func (a *Analyzer) appendMethod(node *sitter.Node, content []byte, decorators []string, cls *ClassModel, model *ModuleModel) {
	fn, err := a.buildFunction(node, content, decorators, cls.Name)
	if err != nil {
		model.Skipped = append(model.Skipped, SkipRecord{
			Symbol: fmt.Sprintf("%s.method@line:%d", cls.Name, int(node.StartPoint().Row+1)),
			Reason: err.Error(),
		})
		return
	}
	for _, prev := range cls.Methods {
		if prev.Name == fn.Name {
			model.Skipped = append(model.Skipped, SkipRecord{
				Symbol: fmt.Sprintf("%s@line:%d", fn.QualifiedName(), fn.Line),
				Reason: fmt.Sprintf("%v: redefinition of %q", ErrUnsupportedConstruct, fn.QualifiedName()),
			})
			return
		}
	}
	for _, tok := range fn.Dependencies() {
		cls.AddDependency(tok)
	}
	cls.Methods = append(cls.Methods, fn)
}

// buildFunction extracts a FunctionModel from a function_definition node.
func (a *Analyzer) buildFunction(node *sitter.Node, content []byte, decorators []string, className string) (*FunctionModel, error) {
	var name, returnType string
	var params []Param
	var async bool
	var body *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			async = true
		case "identifier":
			name = nodeText(child, content)
		case "parameters":
			params = extractParams(child, content)
		case "type":
			returnType = nodeText(child, content)
		case "block":
			body = child
		}
	}

	if name == "" {
		return nil, fmt.Errorf("%w: function without a name", ErrUnsupportedConstruct)
	}

	role := resolveRole(name, decorators, className)

	// The implicit receiver is not a testable parameter.
	if className != "" && role != RoleStaticMethod && len(params) > 0 {
		first := params[0].Name
		if first == "self" || first == "cls" {
			params = params[1:]
		}
	}

	fn := &FunctionModel{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Role:       role,
		Decorators: decorators,
		Class:      className,
		Async:      async,
		Line:       int(node.StartPoint().Row + 1),
	}

	if body != nil {
		fn.Docstring = extractDocstring(body, content)
		a.detectDependencies(body, content, fn, 0)
	}

	return fn, nil
}

// roleVocabulary is the closed decorator vocabulary for role resolution.
// Resolution happens exactly once here; downstream components read the tag.
func resolveRole(name string, decorators []string, className string) Role {
	if className != "" && name == "__init__" {
		return RoleConstructor
	}
	for _, dec := range decorators {
		switch dec {
		case "classmethod":
			return RoleClassMethod
		case "staticmethod":
			return RoleStaticMethod
		}
	}
	return RolePlain
}

// extractParams reads a parameters node into ordered Param values.
//
// Splat parameters (*args, **kwargs) and bare separators (*, /) are skipped:
// they have no single synthesizable value.
func extractParams(node *sitter.Node, content []byte) []Param {
	var params []Param
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, Param{Name: nodeText(child, content)})
		case "typed_parameter":
			var p Param
			for j := 0; j < int(child.ChildCount()); j++ {
				g := child.Child(j)
				switch g.Type() {
				case "identifier":
					p.Name = nodeText(g, content)
				case "type":
					p.DeclaredType = nodeText(g, content)
				}
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "default_parameter", "typed_default_parameter":
			var p Param
			for j := 0; j < int(child.ChildCount()); j++ {
				g := child.Child(j)
				switch g.Type() {
				case "identifier":
					if p.Name == "" {
						p.Name = nodeText(g, content)
					}
				case "type":
					p.DeclaredType = nodeText(g, content)
				}
			}
			if p.Name != "" {
				params = append(params, p)
			}
		}
	}
	return params
}

// extractDecorators collects decorator names from a decorated_definition.
func extractDecorators(node *sitter.Node, content []byte) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			g := child.Child(j)
			switch g.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, nodeText(g, content))
			case "call":
				// Decorator with arguments: @foo(x) records "foo".
				for k := 0; k < int(g.ChildCount()); k++ {
					gg := g.Child(k)
					if gg.Type() == "identifier" || gg.Type() == "attribute" {
						decorators = append(decorators, nodeText(gg, content))
						break
					}
				}
			}
		}
	}
	return decorators
}

// detectDependencies walks a function body recording dependency tokens from
// call targets and attribute-access roots that match the vocabulary.
func (a *Analyzer) detectDependencies(node *sitter.Node, content []byte, fn *FunctionModel, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	switch node.Type() {
	case "call":
		if target := node.ChildByFieldName("function"); target != nil {
			a.recordToken(callTargetText(target, content), fn)
		}
	case "attribute":
		a.recordToken(attributeRootText(node, content), fn)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		a.detectDependencies(node.Child(i), content, fn, depth+1)
	}
}

// recordToken normalizes and records a candidate token when it matches the
// vocabulary.
func (a *Analyzer) recordToken(symbol string, fn *FunctionModel) {
	if symbol == "" {
		return
	}
	if _, ok := a.vocab.Match(symbol); ok {
		fn.AddDependency(strings.ToLower(symbol))
	}
}

// callTargetText renders a call target as a dotted token, stripping the
// self receiver so self.database_session.query yields database_session.query.
func callTargetText(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	text = strings.TrimPrefix(text, "self.")
	text = strings.TrimPrefix(text, "cls.")
	return text
}

// attributeRootText returns the root object of an attribute access,
// skipping the self/cls receiver.
func attributeRootText(node *sitter.Node, content []byte) string {
	current := node
	for current.Type() == "attribute" {
		obj := current.ChildByFieldName("object")
		if obj == nil {
			break
		}
		current = obj
	}
	if current.Type() != "identifier" {
		return ""
	}
	root := nodeText(current, content)
	if root == "self" || root == "cls" {
		// Use the first attribute segment past the receiver.
		full := nodeText(node, content)
		parts := strings.Split(full, ".")
		if len(parts) >= 2 {
			return parts[1]
		}
		return ""
	}
	return root
}

// extractImportDependencies records module-level dependency tokens from
// import paths matching the vocabulary.
func (a *Analyzer) extractImportDependencies(root *sitter.Node, content []byte, model *ModuleModel) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement", "import_from_statement":
			for j := 0; j < int(child.ChildCount()); j++ {
				g := child.Child(j)
				if g.Type() == "dotted_name" {
					path := nodeText(g, content)
					if _, ok := a.vocab.Match(path); ok {
						model.AddDependency(strings.ToLower(path))
					}
					break // only the module path, not imported names
				}
			}
		}
	}
}

// extractModuleDocstring returns the module docstring if the first
// statement is a string expression.
func (a *Analyzer) extractModuleDocstring(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			if s := child.Child(0); s.Type() == "string" {
				return stringContent(s, content)
			}
		}
		return ""
	}
	return ""
}

// extractDocstring returns the docstring of a block, if present.
func extractDocstring(block *sitter.Node, content []byte) string {
	if block.ChildCount() == 0 {
		return ""
	}
	first := block.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	s := first.Child(0)
	if s.Type() != "string" {
		return ""
	}
	return stringContent(s, content)
}

// stringContent strips quotes from a tree-sitter string node.
func stringContent(node *sitter.Node, content []byte) string {
	text := nodeText(node, content)
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return strings.TrimSpace(text)
}

func nodeText(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}
