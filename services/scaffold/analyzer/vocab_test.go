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

import "testing"

func TestDefaultVocabulary_Loads(t *testing.T) {
	v, err := DefaultVocabulary()
	if err != nil {
		t.Fatalf("DefaultVocabulary: %v", err)
	}
	if v == nil {
		t.Fatal("nil vocabulary")
	}
}

func TestVocabulary_Match(t *testing.T) {
	v, err := DefaultVocabulary()
	if err != nil {
		t.Fatalf("DefaultVocabulary: %v", err)
	}

	tests := []struct {
		symbol string
		want   bool
	}{
		{"database_session.query", true},
		{"requests.get", true},
		{"sqlite3.connect", true},
		{"pathlib.path", true},
		{"db_connect", true},
		{"os.path.join", true},
		{"compute_total", false},
		{"", false},
		// Short words must match whole segments, not substrings.
		{"describe", false},
		{"apply_rules", false},
		{"biosphere", false},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			_, got := v.Match(tt.symbol)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestParseVocabulary_Invalid(t *testing.T) {
	if _, err := ParseVocabulary([]byte("categories: {}")); err == nil {
		t.Error("empty categories should be rejected")
	}
	if _, err := ParseVocabulary([]byte(":\n  - bad")); err == nil {
		t.Error("malformed YAML should be rejected")
	}
}

func TestVocabulary_LongestWordWins(t *testing.T) {
	v, err := ParseVocabulary([]byte("categories:\n  storage:\n    - db\n    - database\n"))
	if err != nil {
		t.Fatalf("ParseVocabulary: %v", err)
	}
	word, ok := v.Match("database_session")
	if !ok {
		t.Fatal("expected match")
	}
	if word != "database" {
		t.Errorf("expected longest word to win, got %q", word)
	}
}
