// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pack assembles rendered test units into size-bounded output
// files. Packing is greedy and single-pass: units are never reordered,
// a file closes when the next unit would push it over the line budget.
package pack

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aleutianlabs/scaffold/services/scaffold/enrich"
	"github.com/aleutianlabs/scaffold/services/scaffold/render"
)

// FixtureRenderer renders one file-level fixture definition.
type FixtureRenderer interface {
	RenderFixture(spec enrich.FixtureSpec) (string, error)
}

// OutputFile is one packed test file ready to write.
type OutputFile struct {
	// Path is the file name relative to the output directory.
	Path string

	// Content is the complete pytest source text.
	Content string

	// Units are the base test names packed into the file, in order.
	Units []string

	// LineCount is the content's line count.
	LineCount int
}

// Packer groups test units into output files under a line budget.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Packer struct {
	maxLines int
	split    bool
	prefix   string
	fixtures FixtureRenderer
}

// NewPacker creates a Packer.
//
// Inputs:
//   - maxLines: Line budget per output file. Must be positive.
//   - split: When false, all units pack into a single file regardless
//     of the budget.
//   - prefix: Test naming prefix, applied to output file names as well
//     as to the test functions inside them.
//   - fixtures: Renderer for file-level fixture definitions.
func NewPacker(maxLines int, split bool, prefix string, fixtures FixtureRenderer) (*Packer, error) {
	if maxLines <= 0 {
		return nil, fmt.Errorf("max lines must be positive, got %d", maxLines)
	}
	if prefix == "" {
		return nil, fmt.Errorf("test name prefix is required")
	}
	if fixtures == nil {
		return nil, fmt.Errorf("fixture renderer is required")
	}
	return &Packer{maxLines: maxLines, split: split, prefix: prefix, fixtures: fixtures}, nil
}

// Pack assembles units into output files.
//
// Description:
//
//	Units are consumed in the order given. Each group becomes one file:
//	a generated header, the merged sorted imports, the group's fixtures
//	deduplicated by name in first-seen order, then the unit bodies. A
//	unit larger than the whole budget still ships, alone in its own
//	file.
//
// Inputs:
//   - units: Rendered test units in classification order.
//   - sourcePath: Logical path of the analyzed source file, used for
//     the header and the output file stem.
//
// Outputs:
//   - []OutputFile: One or more packed files. Empty input yields nil.
func (p *Packer) Pack(units []*render.GeneratedTestUnit, sourcePath string) ([]OutputFile, error) {
	if len(units) == 0 {
		return nil, nil
	}

	var groups [][]*render.GeneratedTestUnit
	var current []*render.GeneratedTestUnit
	total := 0
	for _, u := range units {
		if p.split && len(current) > 0 && total+u.LineCount > p.maxLines {
			groups = append(groups, current)
			current = nil
			total = 0
		}
		current = append(current, u)
		total += u.LineCount
	}
	groups = append(groups, current)

	files := make([]OutputFile, 0, len(groups))
	for i, group := range groups {
		content, names, err := p.assemble(group, sourcePath)
		if err != nil {
			return nil, err
		}
		files = append(files, OutputFile{
			Path:      p.outputPath(sourcePath, i),
			Content:   content,
			Units:     names,
			LineCount: strings.Count(content, "\n"),
		})
	}
	return files, nil
}

// assemble builds one file's content from a group of units.
func (p *Packer) assemble(group []*render.GeneratedTestUnit, sourcePath string) (string, []string, error) {
	importSet := make(map[string]struct{})
	seenFixtures := make(map[string]struct{})
	var fixtures []enrich.FixtureSpec
	names := make([]string, 0, len(group))

	for _, u := range group {
		names = append(names, u.Name)
		for _, stmt := range u.Imports {
			importSet[stmt] = struct{}{}
		}
		for _, f := range u.Fixtures {
			if _, ok := seenFixtures[f.Name]; ok {
				continue
			}
			seenFixtures[f.Name] = struct{}{}
			fixtures = append(fixtures, f)
		}
	}

	imports := make([]string, 0, len(importSet))
	for stmt := range importSet {
		imports = append(imports, stmt)
	}
	sort.Strings(imports)

	var b strings.Builder
	fmt.Fprintf(&b, "# Generated by scaffold. Source: %s.\n", sourcePath)
	b.WriteString("\n")
	for _, stmt := range imports {
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, f := range fixtures {
		text, err := p.fixtures.RenderFixture(f)
		if err != nil {
			return "", nil, fmt.Errorf("assemble fixtures: %w", err)
		}
		b.WriteString("\n")
		b.WriteString(text)
	}
	for _, u := range group {
		b.WriteString("\n")
		b.WriteString(u.Body)
	}
	return b.String(), names, nil
}

// outputPath derives the test file name from the configured prefix and
// the source path. The first file takes the bare stem; subsequent files
// append a numeric suffix starting at 2.
func (p *Packer) outputPath(sourcePath string, index int) string {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	if index == 0 {
		return fmt.Sprintf("%s%s.py", p.prefix, stem)
	}
	return fmt.Sprintf("%s%s_%d.py", p.prefix, stem, index+1)
}
