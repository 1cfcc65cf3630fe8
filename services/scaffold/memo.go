// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scaffold

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aleutianlabs/scaffold/services/scaffold/analyzer"
	"github.com/aleutianlabs/scaffold/services/scaffold/pack"
)

// defaultMemoSize bounds the generation memo. Entries are full results
// for one source file, so a few hundred covers a large repository scan.
const defaultMemoSize = 256

// memo caches generation results keyed by source content and path.
// Identical input bytes produce identical output, so a hit skips the
// whole pipeline.
//
// Thread Safety: Safe for concurrent use.
type memo struct {
	cache *lru.Cache[string, *Result]
}

func newMemo(size int) (*memo, error) {
	if size <= 0 {
		size = defaultMemoSize
	}
	cache, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &memo{cache: cache}, nil
}

// memoKey hashes the logical path together with the content so the same
// bytes under two paths never collide.
func memoKey(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// get returns a defensive copy of the cached result, if any. Cached
// results are treated as immutable; only the slices a caller could
// append to are cloned.
func (m *memo) get(key string) (*Result, bool) {
	cached, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	out := *cached
	out.Files = append([]pack.OutputFile(nil), cached.Files...)
	out.Skipped = append([]analyzer.SkipRecord(nil), cached.Skipped...)
	return &out, true
}

func (m *memo) put(key string, r *Result) {
	m.cache.Add(key, r)
}
