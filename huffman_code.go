// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "sort"

// hcode is a canonical Huffman code: code holds len bits, stored
// bit-reversed to length so the LSB-first bit writer emits them
// MSB-first. len==0 means "unused symbol".
type hcode struct {
	code uint16
	len  uint8
}

// huffmanEncoder builds and holds a canonical, length-limited Huffman
// code for a fixed-size alphabet.
type huffmanEncoder struct {
	codes []hcode
}

func newHuffmanEncoder(size int) *huffmanEncoder {
	return &huffmanEncoder{codes: make([]hcode, size)}
}

// bitLength returns sum(freq[i] * codes[i].len): the number of bits this
// encoding would need to emit every occurrence counted in freq.
func (h *huffmanEncoder) bitLength(freq []int32) int64 {
	var total int64
	for i, f := range freq {
		if f != 0 {
			total += int64(f) * int64(h.codes[i].len)
		}
	}
	return total
}

// literalNode pairs a symbol with its frequency, used while sorting and
// package-merging non-zero-frequency symbols.
type literalNode struct {
	symbol int32
	freq   int32
}

type byFreq []literalNode

func (s byFreq) Len() int      { return len(s) }
func (s byFreq) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byFreq) Less(i, j int) bool {
	if s[i].freq != s[j].freq {
		return s[i].freq < s[j].freq
	}
	return s[i].symbol < s[j].symbol
}

// generate assigns every non-zero-frequency symbol in freq a
// length-limited canonical Huffman code of at most maxBits bits.
// Symbols with freq[i]==0 are left at len==0.
func (h *huffmanEncoder) generate(freq []int32, maxBits int) {
	if maxBits >= 16 {
		panic(errMaxBitsTooLarge(maxBits))
	}
	for i := range h.codes {
		h.codes[i] = hcode{}
	}

	list := make([]literalNode, 0, len(freq))
	for sym, f := range freq {
		if f != 0 {
			list = append(list, literalNode{symbol: int32(sym), freq: f})
		}
	}

	switch len(list) {
	case 0:
		return
	case 1, 2:
		// Trivial case: every used symbol gets length 1; codes are
		// assigned in ascending order of first
		// appearance, which for a frequency table scanned low-to-high
		// is just ascending symbol value.
		sort.Slice(list, func(i, j int) bool { return list[i].symbol < list[j].symbol })
		for i, n := range list {
			h.codes[n.symbol] = hcode{code: uint16(i), len: 1}
		}
		return
	}

	sort.Sort(byFreq(list))

	freqs := make([]int64, len(list))
	for i, n := range list {
		freqs[i] = int64(n.freq)
	}
	lens := packageMerge(freqs, maxBits)

	lengths := make([]int32, len(h.codes))
	for i, n := range list {
		l := lens[i]
		if l <= 0 || l > int32(maxBits) {
			panic(errHuffmanInvariant(int(l), maxBits))
		}
		lengths[n.symbol] = l
	}
	assignCanonicalCodes(h.codes, lengths, maxBits)
}

// pmItem is a package-merge list item: a weight and the set of original
// (sorted-list-index) symbols folded into it so far.
type pmItem struct {
	weight  int64
	members []int32
}

// packageMerge implements the boundary package-merge construction:
// given ascending-sorted frequencies, it returns, for each input index,
// the Huffman code length assigned by
// the optimal length-limited tree with at most maxBits levels.
//
// The classic package-merge result (Larmore & Hirschberg): build, level
// by level, a merged list of "leaves" (the original frequencies) and
// "packages" (pairs consumed from the previous level's list, in
// ascending-weight order); at the top level, the 2n-2 cheapest items
// determine the code lengths — each original symbol's length equals
// the number of times its leaf occurs, directly or nested inside a
// package, among those 2n-2 items.
func packageMerge(freqs []int64, maxBits int) []int32 {
	n := len(freqs)
	counts := make([]int32, n)
	if n == 0 {
		return counts
	}

	leaves := make([]pmItem, n)
	for i, f := range freqs {
		leaves[i] = pmItem{weight: f, members: []int32{int32(i)}}
	}

	level := leaves
	for b := 2; b <= maxBits; b++ {
		packages := make([]pmItem, len(level)/2)
		for i := range packages {
			a, c := level[2*i], level[2*i+1]
			members := make([]int32, 0, len(a.members)+len(c.members))
			members = append(members, a.members...)
			members = append(members, c.members...)
			packages[i] = pmItem{weight: a.weight + c.weight, members: members}
		}
		level = mergePackageItems(leaves, packages)
	}

	take := 2*n - 2
	if take > len(level) {
		take = len(level)
	}
	for _, it := range level[:take] {
		for _, m := range it.members {
			counts[m]++
		}
	}
	return counts
}

// mergePackageItems merges two weight-ascending item lists into one,
// stable on ties so that leaves sort before packages of equal weight
// (cheaper of (a) the next character, or (b) a pair propagated from
// the level below).
func mergePackageItems(a, b []pmItem) []pmItem {
	out := make([]pmItem, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].weight <= b[j].weight {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// assignCanonicalCodes: given a per-symbol length array (0 for unused
// symbols), assign consecutive
// codes within each length, in ascending symbol order, per RFC 1951
// §3.2.2's canonical code derivation, storing each code bit-reversed to
// its length.
func assignCanonicalCodes(codes []hcode, lengths []int32, maxBits int) {
	var bitCount [17]int32
	for _, l := range lengths {
		if l != 0 {
			bitCount[l]++
		}
	}

	var code int32
	var nextCode [17]int32
	for b := 1; b <= maxBits; b++ {
		code = (code + bitCount[b-1]) << 1
		nextCode[b] = code
	}

	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		codes[sym] = hcode{code: reverseBitsN(uint16(c), uint8(l)), len: uint8(l)}
	}
}

// generateFixedLiteralEncoding builds the RFC 1951 §3.2.6 fixed literal
// encoding (288 symbols): 0..143 get length 8, 144..255 length 9,
// 256..279 length 7, 280..287 length 8.
func generateFixedLiteralEncoding() *huffmanEncoder {
	h := newHuffmanEncoder(288)
	for ch := 0; ch < 288; ch++ {
		var bits, size uint16
		switch {
		case ch < 144:
			bits, size = uint16(ch)+48, 8
		case ch < 256:
			bits, size = uint16(ch)+400-144, 9
		case ch < 280:
			bits, size = uint16(ch)-256, 7
		default:
			bits, size = uint16(ch)+192-280, 8
		}
		h.codes[ch] = hcode{code: reverseBitsN(bits, uint8(size)), len: uint8(size)}
	}
	return h
}

// generateFixedOffsetEncoding builds the RFC 1951 fixed offset encoding
// (30 symbols, all length 5).
func generateFixedOffsetEncoding() *huffmanEncoder {
	h := newHuffmanEncoder(30)
	for ch := range h.codes {
		h.codes[ch] = hcode{code: reverseBitsN(uint16(ch), 5), len: 5}
	}
	return h
}

// Process-wide immutable fixed encodings, built once and shared by every
// Writer.
var (
	fixedLiteralEncoding = generateFixedLiteralEncoding()
	fixedOffsetEncoding  = generateFixedOffsetEncoding()
)
