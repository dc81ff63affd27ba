// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

// Matcher implements a "fast" LZ77 match-finder: a single-pass,
// hash-table-driven search that trades compression ratio
// for speed, carrying just enough state across blocks (cur, prev, and
// the hash table itself) to find matches that straddle a block
// boundary. It holds no reference to a Writer; callers feed its output
// tokens to Writer.WriteBlock/WriteBlockDynamic themselves.
type Matcher struct {
	table [matcherTableSize]matchEntry
	prev  []byte
	cur   int32
}

const (
	matcherTableBits = 14
	matcherTableSize = 1 << matcherTableBits
	matcherTableMask = matcherTableSize - 1

	hashMul = 0x1e35a7bd

	minMatchLookahead = 4
	maxMatchOffset32  = int32(maxMatchOffset)

	// Once cur would come within two max-size blocks of overflowing
	// int32, every table offset is rebased.
	maxBlockSize = 65535
)

// matchEntry is one hash table slot: the 4-byte probe value last seen
// at this bucket, and the absolute offset it was seen at.
type matchEntry struct {
	val    uint32
	offset int32
}

// NewMatcher returns a Matcher with empty history.
func NewMatcher() *Matcher {
	return &Matcher{cur: maxMatchOffset32 + 1}
}

// Reset clears m's carried-over block (prev) and invalidates every
// table entry by advancing cur past any offset a live entry could hold.
func (m *Matcher) Reset() {
	m.prev = m.prev[:0]
	m.cur += maxMatchOffset32
	if m.cur > maxInt32-maxBlockSize*2 {
		m.shiftOffsets()
	}
}

// shiftOffsets rebases every table offset so that cur can keep growing
// without overflowing int32.
func (m *Matcher) shiftOffsets() {
	if len(m.prev) == 0 {
		for i := range m.table {
			m.table[i] = matchEntry{}
		}
		m.cur = maxMatchOffset32 + 1
		return
	}
	delta := m.cur - maxMatchOffset32 - 1
	for i := range m.table {
		v := m.table[i].offset - delta
		if v < 0 {
			v = 0
		}
		m.table[i].offset = v
	}
	m.cur = maxMatchOffset32 + 1
}

const maxInt32 = 1<<31 - 1

func hash(u uint32) uint32 {
	return (u * hashMul) >> (32 - matcherTableBits)
}

func load32(b []byte, i int32) uint32 {
	b = b[i:]
	b = b[:4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func load64(b []byte, i int32) uint64 {
	b = b[i:]
	b = b[:8]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// matchLen returns how many bytes beyond the first 4 (already known
// equal) match between src starting at s and the match source starting
// at t, where t may be negative to mean "t bytes from the end of prev".
// The result is capped so the total match length (4+result) never
// exceeds maxMatchLength.
func matchLen(s, t int32, src, prev []byte) int32 {
	s1 := int(s) + maxMatchLength - minMatchLookahead
	if s1 > len(src) {
		s1 = len(src)
	}

	// If t is negative, the match begins in prev.
	if t >= 0 {
		b := src[t:]
		a := src[s:s1]
		b = b[:len(a)]
		for i, av := range a {
			if b[i] != av {
				return int32(i)
			}
		}
		return int32(len(a))
	}

	tp := int32(len(prev)) + t
	if tp < 0 {
		return 0
	}
	bp := prev[tp:]
	a := src[s:s1]
	n := int32(0)
	for n < int32(len(a)) && int(n) < len(bp) {
		if a[n] != bp[n] {
			return n
		}
		n++
	}
	if int(n) == len(bp) {
		// Matched to the end of prev; continue comparing against src[0:].
		rest := a[n:]
		b := src[:len(rest)]
		for i, av := range rest {
			if b[i] != av {
				return n + int32(i)
			}
		}
		return n + int32(len(rest))
	}
	return n
}

// FindMatches tokenizes src (at most 65535 bytes) against both src
// itself and the block previously passed to FindMatches, appending
// literal and match tokens to dst and returning the extended slice.
func (m *Matcher) FindMatches(dst []Token, src []byte) []Token {
	if m.cur >= maxInt32-maxBlockSize*2 {
		m.shiftOffsets()
	}

	if len(src) < 1+1+15 {
		m.cur += maxBlockSize
		m.prev = m.prev[:0]
		for _, c := range src {
			dst = append(dst, LiteralToken(c))
		}
		return dst
	}

	sLimit := int32(len(src) - 15)
	var nextEmit int32
	s := int32(0)
	cv := load32(src, s)
	nextHash := hash(cv)

	for {
		skip := 32
		nextS := s
		var candidate matchEntry
		for {
			s = nextS
			bytesBetweenHashLookups := skip >> 5
			nextS = s + int32(bytesBetweenHashLookups)
			skip++
			if nextS > sLimit {
				goto emitRemainder
			}
			candidate = m.table[nextHash&matcherTableMask]
			now := load32(src, nextS)
			m.table[nextHash&matcherTableMask] = matchEntry{val: cv, offset: s + m.cur}
			nextHash = hash(now)

			if s-(candidate.offset-m.cur) <= maxMatchOffset32 && cv == candidate.val {
				break
			}
			cv = now
		}

		for i := nextEmit; i < s; i++ {
			dst = append(dst, LiteralToken(src[i]))
		}

		for {
			s += minMatchLookahead
			t := candidate.offset - m.cur + minMatchLookahead
			l := matchLen(s, t, src, m.prev)
			dst = append(dst, MatchToken(int(l)+minMatchLookahead, int(s-t)))
			s += l
			nextEmit = s
			if s >= sLimit {
				goto emitRemainder
			}

			x := load64(src, s-2)
			prevHash := hash(uint32(x))
			m.table[prevHash&matcherTableMask] = matchEntry{val: uint32(x), offset: s - 2 + m.cur}
			currHash := hash(uint32(x >> 16))
			candidate = m.table[currHash&matcherTableMask]
			m.table[currHash&matcherTableMask] = matchEntry{val: uint32(x >> 16), offset: s + m.cur}

			if s-(candidate.offset-m.cur) > maxMatchOffset32 || uint32(x>>16) != candidate.val {
				cv = uint32(x >> 16)
				nextHash = hash(cv)
				s++
				break
			}
		}
	}

emitRemainder:
	if int(nextEmit) < len(src) {
		for _, c := range src[nextEmit:] {
			dst = append(dst, LiteralToken(c))
		}
	}
	m.cur += int32(len(src))
	m.prev = append(m.prev[:0], src...)
	return dst
}
