// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "math/bits"

// reverseBits returns the 16-bit bit-reversal of v.
//
// Huffman codes are built MSB-first (canonical, ascending by length then
// symbol) but the bit writer accumulates LSB-first, so every code is
// stored bit-reversed to its length before it ever reaches the writer.
func reverseBits(v uint16) uint16 {
	return bits.Reverse16(v)
}

// reverseBitsN returns the reversal of the low n bits of v, n in [0,16].
func reverseBitsN(v uint16, n uint8) uint16 {
	return reverseBits(v << (16 - n))
}
