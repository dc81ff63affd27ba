// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

// Token is a packed literal or (length, distance) match. Bit 30
// distinguishes the two kinds; everything else is
// arranged so a match token's length and offset can be pulled out with
// a shift and a mask. Token is the unit a Writer's block-writing methods
// consume, whether produced by Matcher or assembled by a caller.
type Token uint32

const (
	literalType = 0 << 30
	matchType   = 1 << 30

	lengthShift = 22
	offsetMask  = 1<<lengthShift - 1
	typeMask    = 1 << 30

	minMatchLength = 3
	maxMatchLength = 258
	minOffsetSize  = 1
	maxMatchOffset = 1 << 15 // 32768
)

// LiteralToken returns a Token representing the literal byte b.
func LiteralToken(b byte) Token {
	return Token(literalType + uint32(b))
}

// MatchToken returns a Token representing a back-reference of length
// matchLen (3..258) and distance matchOffset (1..32768).
//
// Each field is shifted into its own bit range and the three are
// combined with addition (equivalently OR, since the ranges never
// overlap).
func MatchToken(matchLen, matchOffset int) Token {
	xlength := uint32(matchLen - minMatchLength)
	xoffset := uint32(matchOffset - minOffsetSize)
	return Token(matchType + xlength<<lengthShift + xoffset)
}

// IsLiteral reports whether t holds a literal byte.
func (t Token) IsLiteral() bool {
	return t&typeMask == literalType
}

// Literal returns the literal byte held by t. Only valid if IsLiteral.
func (t Token) Literal() byte {
	return byte(t)
}

// Length returns xlength, the biased match length (xlength = matchLen -
// minMatchLength) held by t, without undoing the bias: lengthCode and
// lengthBase are themselves indexed and offset in xlength units, so
// callers pass this value straight through rather than re-deriving
// matchLen. Only valid if !IsLiteral.
func (t Token) Length() uint32 {
	return uint32(t>>lengthShift) & (1<<8 - 1)
}

// Offset returns xoffset, the biased match distance (xoffset =
// matchOffset - minOffsetSize) held by t, without undoing the bias:
// offsetCode and offsetBase are themselves indexed and offset in
// xoffset units. Only valid if !IsLiteral.
func (t Token) Offset() uint32 {
	return uint32(t) & offsetMask
}
