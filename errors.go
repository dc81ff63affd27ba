// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "github.com/cockroachdb/errors"

// ErrUnalignedWrite is the sticky error latched by (*BitWriter).WriteBytes
// when called while the accumulator holds a partial byte. It is a
// caller bug: WriteBytes requires nbits%8==0.
var ErrUnalignedWrite = errors.New("deflate: writeBytes called with a non-byte-aligned bit buffer")

// errMaxBitsTooLarge reports an out-of-range maxBits passed to
// (*huffmanEncoder).generate. This is a programmer error and is not
// recoverable by any caller contract, so it panics rather than
// threading through a sticky error field.
func errMaxBitsTooLarge(maxBits int) error {
	return errors.AssertionFailedf("deflate: huffman maxBits must be < 16, got %d", maxBits)
}

// errHuffmanInvariant reports that length-limited Huffman construction
// gave a used symbol a code length outside 1..maxBits, which must never
// happen given correctly sorted, non-zero input frequencies.
func errHuffmanInvariant(gotLen, maxBits int) error {
	return errors.AssertionFailedf("deflate: huffman code construction produced code length %d, want 1..%d", gotLen, maxBits)
}
