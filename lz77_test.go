// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/corvidware/deflate/internal/flate"
)

func roundTripThroughWriter(t *testing.T, tokens []Token, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBlock(tokens, true, data); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	w.Flush()
	if err := w.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	got, err := flate.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("flate.Decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestFindMatchesTinyBlockIsAllLiterals(t *testing.T) {
	// Below the minimum-lookahead threshold (1+1+15 bytes), every byte
	// must come back as a literal token.
	data := []byte("short")
	m := NewMatcher()
	tokens := m.FindMatches(nil, data)
	if len(tokens) != len(data) {
		t.Fatalf("got %d tokens, want %d (one per byte)", len(tokens), len(data))
	}
	for i, tok := range tokens {
		if !tok.IsLiteral() || tok.Literal() != data[i] {
			t.Fatalf("token %d = %+v, want literal %q", i, tok, data[i])
		}
	}
}

func TestFindMatchesRepeatedPatternProducesMatches(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 100)
	m := NewMatcher()
	tokens := m.FindMatches(nil, data)

	var sawMatch bool
	for _, tok := range tokens {
		if !tok.IsLiteral() {
			sawMatch = true
			if l := tok.Length(); l > maxMatchLength-minMatchLength {
				t.Fatalf("xlength %d out of range", l)
			}
			if o := tok.Offset(); o > maxMatchOffset-1 {
				t.Fatalf("xoffset %d out of range", o)
			}
		}
	}
	if !sawMatch {
		t.Fatal("expected at least one match token for a highly repetitive block")
	}

	roundTripThroughWriter(t, tokens, data)
}

func TestFindMatchesRandomDataRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	data := make([]byte, 50000)
	for i := range data {
		data[i] = byte(rng.IntN(256))
	}
	m := NewMatcher()
	tokens := m.FindMatches(nil, data)
	roundTripThroughWriter(t, tokens, data)
}

func TestFindMatchesAcrossBlockBoundaryUsesPrev(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	first := make([]byte, 2000)
	for i := range first {
		first[i] = byte(rng.IntN(256))
	}
	// second starts with a long run that also appears at the tail of
	// first, so a correct matcher should find a cross-block match
	// referencing prev.
	second := append(append([]byte{}, first[len(first)-100:]...), randomTail(rng, 900)...)

	m := NewMatcher()
	t1 := m.FindMatches(nil, first)
	t2 := m.FindMatches(nil, second)

	// A match references prev when its distance reaches back past the
	// start of second.
	var pos uint32
	var sawPrevMatch bool
	for _, tok := range t2 {
		if tok.IsLiteral() {
			pos++
			continue
		}
		if tok.Offset()+minOffsetSize > pos {
			sawPrevMatch = true
		}
		pos += tok.Length() + minMatchLength
	}
	if !sawPrevMatch {
		t.Fatal("expected a match in the second block referencing prev")
	}

	roundTripThroughWriter(t, t1, first)

	// t2 only decodes after first's bytes, so both blocks go into one
	// stream.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBlock(t1, false, first); err != nil {
		t.Fatalf("WriteBlock (first): %v", err)
	}
	if err := w.WriteBlock(t2, true, second); err != nil {
		t.Fatalf("WriteBlock (second): %v", err)
	}
	w.Flush()
	got, err := flate.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("flate.Decode: %v", err)
	}
	want := append(append([]byte{}, first...), second...)
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(want))
	}
}

func randomTail(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.IntN(256))
	}
	return b
}

func TestMatcherResetInvalidatesHistory(t *testing.T) {
	data := bytes.Repeat([]byte("repeatme"), 50)
	m := NewMatcher()
	m.FindMatches(nil, data)
	m.Reset()
	if len(m.prev) != 0 {
		t.Fatalf("prev not cleared after Reset: %d bytes", len(m.prev))
	}
	// A fresh block after Reset must still tokenize and round-trip
	// correctly even though the table carries stale entries.
	tokens := m.FindMatches(nil, data)
	roundTripThroughWriter(t, tokens, data)
}

func TestShiftOffsetsRebasesWithoutHistory(t *testing.T) {
	m := NewMatcher()
	m.cur = maxInt32 - 10
	m.shiftOffsets()
	if m.cur != maxMatchOffset32+1 {
		t.Fatalf("cur after shiftOffsets = %d, want %d", m.cur, maxMatchOffset32+1)
	}
	for _, e := range m.table {
		if e != (matchEntry{}) {
			t.Fatal("table not cleared by shiftOffsets with empty prev")
		}
	}
}
