// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deflate implements the block-writer core of the DEFLATE
// compressed data format described in RFC 1951: it turns a stream of
// literal/match tokens (produced either by the package's own LZ77
// matcher or by a caller) into a bit-exact DEFLATE block, choosing
// whichever of stored, fixed-Huffman, or dynamic-Huffman encoding is
// smallest.
//
// Wrapper framing (zlib, gzip) and inflate are deliberately out of
// scope: this package only ever writes bytes, never reads them, except
// in its own tests where an internal decoder verifies round-trip
// correctness.
package deflate
