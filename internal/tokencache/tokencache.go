// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tokencache memoizes LZ77 tokenization of input blocks, so a
// caller re-tokenizing the same bytes within one process (e.g. a
// benchmarking driver walking a tree of near-duplicate files) pays the
// match-finder's cost once per distinct block rather than once per
// occurrence.
package tokencache

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/corvidware/deflate"
)

// entry is what the cache actually stores: the token list plus the
// length of the input block it was computed from, so a hash collision
// between differently-sized blocks cannot be mistaken for a hit.
type entry struct {
	tokens []deflate.Token
	srcLen int
}

// Cache memoizes token lists by content hash, evicting under a TinyLFU
// admission policy once it grows past capacity. A Cache is not safe for
// concurrent use; callers serialize their own access.
type Cache struct {
	lfu *tinylfu.T[uint64, entry]
}

// New returns a Cache admitting up to capacity entries.
func New(capacity int) *Cache {
	return &Cache{lfu: tinylfu.New[uint64, entry](capacity, capacity*10, identityHash)}
}

func identityHash(k uint64) uint64 { return k }

// Get returns the cached token list for src, calling tokenize on a
// miss. tokenize is expected to hand back a fresh *deflate.Matcher's
// output (e.g. deflate.NewMatcher().FindMatches(nil, src)) rather than
// one carried across blocks: a cache hit skips the call entirely, so a
// shared, block-carrying Matcher would silently desynchronize its
// cur/prev state across cached and uncached blocks.
func (c *Cache) Get(src []byte, tokenize func([]byte) []deflate.Token) []deflate.Token {
	key := xxhash.Sum64(src)
	if e, ok := c.lfu.Get(key); ok && e.srcLen == len(src) {
		return e.tokens
	}
	tokens := tokenize(src)
	c.lfu.Add(key, entry{tokens: tokens, srcLen: len(src)})
	return tokens
}
