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
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed dependency_vocab.yaml
var defaultVocabYAML []byte

// vocabFile is the on-disk shape of the dependency vocabulary.
type vocabFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// Vocabulary is the curated word list used to detect dependency tokens in
// call targets, attribute-access roots, and import paths.
//
// Thread Safety: Immutable after construction; safe for concurrent use.
type Vocabulary struct {
	words []string
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
	defaultVocabErr  error
)

// DefaultVocabulary returns the embedded vocabulary, parsed once.
func DefaultVocabulary() (*Vocabulary, error) {
	defaultVocabOnce.Do(func() {
		defaultVocab, defaultVocabErr = ParseVocabulary(defaultVocabYAML)
	})
	return defaultVocab, defaultVocabErr
}

// ParseVocabulary parses a YAML vocabulary document.
//
// Words are lowercase-normalized and sorted longest-first so that the most
// specific word wins when several match the same token.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse dependency vocabulary: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("dependency vocabulary has no categories")
	}

	seen := make(map[string]struct{})
	var words []string
	for _, list := range file.Categories {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	return &Vocabulary{words: words}, nil
}

// Match reports whether the symbol references a vocabulary word, returning
// the matched word. Short words (<= 3 runes) must match a whole dotted or
// underscored segment to avoid accidental substring hits ("describe" must
// not match "db").
func (v *Vocabulary) Match(symbol string) (string, bool) {
	if symbol == "" {
		return "", false
	}
	lower := strings.ToLower(symbol)
	segments := splitSegments(lower)
	for _, w := range v.words {
		if len(w) > 3 {
			if strings.Contains(lower, w) {
				return w, true
			}
			continue
		}
		for _, seg := range segments {
			if seg == w {
				return w, true
			}
		}
	}
	return "", false
}

// splitSegments breaks a dotted/underscored symbol into atomic segments.
func splitSegments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '_' || r == '(' || r == ')'
	})
}
