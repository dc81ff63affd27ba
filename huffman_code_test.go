// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

// kraftSum computes sum(2^-len) over every used code, which must equal
// exactly 1 for a complete canonical Huffman code (Kraft's inequality,
// tight for a code with no unused leaves).
func kraftSum(codes []hcode) float64 {
	var sum float64
	for _, c := range codes {
		if c.len != 0 {
			sum += 1 / float64(uint32(1)<<c.len)
		}
	}
	return sum
}

func TestGenerateSatisfiesKraftInequality(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for trial := range 20 {
		t.Run(fmt.Sprintf("trial=%d", trial), func(t *testing.T) {
			n := 3 + rng.IntN(280)
			freq := make([]int32, n)
			for i := range freq {
				if rng.IntN(4) != 0 {
					freq[i] = 1 + int32(rng.IntN(10000))
				}
			}
			var used int
			for _, f := range freq {
				if f != 0 {
					used++
				}
			}
			if used == 0 {
				freq[0] = 1
				used = 1
			}

			h := newHuffmanEncoder(n)
			h.generate(freq, maxCodeLen)

			// A single used symbol is a degenerate one-codeword "code"
			// (length 1, Kraft sum 0.5): only one of the two length-1
			// slots is ever assigned, since there's no second symbol to
			// disambiguate from. The sum is tight (== 1) only once
			// there are 2+ used symbols.
			want := 1.0
			if used == 1 {
				want = 0.5
			}
			if sum := kraftSum(h.codes); used > 0 {
				if diff := sum - want; diff > 1e-9 || diff < -1e-9 {
					t.Fatalf("kraft sum = %v, want %v (used=%d)", sum, want, used)
				}
			}
		})
	}
}

func TestGenerateRespectsMaxBits(t *testing.T) {
	// A Fibonacci-like frequency distribution is the classic adversarial
	// input for length-limited Huffman construction: the unconstrained
	// optimal tree would need more than maxBits levels.
	n := 40
	freq := make([]int32, n)
	a, b := int32(1), int32(1)
	for i := range freq {
		freq[i] = a
		a, b = b, a+b
	}

	h := newHuffmanEncoder(n)
	h.generate(freq, 8)

	for i, c := range h.codes {
		if c.len > 8 {
			t.Fatalf("codes[%d].len = %d, want <= 8", i, c.len)
		}
	}
}

func TestGenerateTrivialCases(t *testing.T) {
	t.Run("single symbol", func(t *testing.T) {
		freq := make([]int32, 10)
		freq[4] = 100
		h := newHuffmanEncoder(10)
		h.generate(freq, maxCodeLen)
		if h.codes[4].len != 1 {
			t.Fatalf("single used symbol got len %d, want 1", h.codes[4].len)
		}
		for i, c := range h.codes {
			if i != 4 && c.len != 0 {
				t.Fatalf("unused symbol %d got len %d, want 0", i, c.len)
			}
		}
	})

	t.Run("two symbols", func(t *testing.T) {
		freq := make([]int32, 10)
		freq[2] = 5
		freq[7] = 1
		h := newHuffmanEncoder(10)
		h.generate(freq, maxCodeLen)
		if h.codes[2].len != 1 || h.codes[7].len != 1 {
			t.Fatalf("two-symbol codes = %+v, %+v, want both len 1", h.codes[2], h.codes[7])
		}
		if h.codes[2].code == h.codes[7].code {
			t.Fatalf("two-symbol codes collide: %+v", h.codes[2])
		}
	})

	t.Run("all zero frequency", func(t *testing.T) {
		freq := make([]int32, 10)
		h := newHuffmanEncoder(10)
		h.generate(freq, maxCodeLen)
		for i, c := range h.codes {
			if c.len != 0 {
				t.Fatalf("symbol %d got len %d with zero frequency, want 0", i, c.len)
			}
		}
	})
}

func TestAssignCanonicalCodesAreAscendingWithinLength(t *testing.T) {
	lengths := []int32{0, 3, 3, 2, 4, 4, 4, 4, 1}
	codes := make([]hcode, len(lengths))
	assignCanonicalCodes(codes, lengths, 4)

	// Re-derive, per symbol, the un-reversed code value and check that
	// within each length class codes increase in ascending symbol order
	// (RFC 1951 §3.2.2's canonical assignment).
	byLen := map[int32][]int{}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		byLen[l] = append(byLen[l], sym)
	}
	for l, syms := range byLen {
		var prev int32 = -1
		for _, sym := range syms {
			v := int32(reverseBitsN(codes[sym].code, uint8(l)))
			if v <= prev {
				t.Fatalf("length %d: symbol %d code %d not strictly ascending after %d", l, sym, v, prev)
			}
			prev = v
		}
	}
}

func TestFixedEncodingsMatchRFC1951(t *testing.T) {
	wantLit := func(ch int) uint8 {
		switch {
		case ch < 144:
			return 8
		case ch < 256:
			return 9
		case ch < 280:
			return 7
		default:
			return 8
		}
	}
	for ch := 0; ch < 288; ch++ {
		if got := fixedLiteralEncoding.codes[ch].len; got != wantLit(ch) {
			t.Fatalf("fixedLiteralEncoding.codes[%d].len = %d, want %d", ch, got, wantLit(ch))
		}
	}
	for ch := range fixedOffsetEncoding.codes {
		if got := fixedOffsetEncoding.codes[ch].len; got != 5 {
			t.Fatalf("fixedOffsetEncoding.codes[%d].len = %d, want 5", ch, got)
		}
	}
}

func TestBitLength(t *testing.T) {
	h := newHuffmanEncoder(4)
	h.codes[0] = hcode{len: 2}
	h.codes[1] = hcode{len: 3}
	h.codes[2] = hcode{len: 0}
	h.codes[3] = hcode{len: 5}
	freq := []int32{10, 4, 100, 1}
	want := int64(10*2 + 4*3 + 100*0 + 1*5)
	if got := h.bitLength(freq); got != want {
		t.Fatalf("bitLength = %d, want %d", got, want)
	}
}
