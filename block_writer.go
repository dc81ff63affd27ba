// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deflate

import "io"

// badCode marks the end of the RLE-encoded codegen stream.
const badCode = 255

// Writer orchestrates a single DEFLATE block: it indexes a token stream
// into symbol frequencies, builds length-limited Huffman codes for the
// literal/length and distance alphabets, runs the RFC 1951 §3.2.7
// code-length run-length encoding, compares the three possible block
// encodings, and emits the smallest through an owned BitWriter.
type Writer struct {
	bw *BitWriter

	literalFreq [maxNumLit]int32
	offsetFreq  [maxNumDist]int32
	codegenFreq [numCodes]int32

	// codegen holds the concatenated literal+offset code-length stream,
	// RLE-compressed in place, terminated by badCode. maxNumLit +
	// maxNumDist + 1 is the largest it can ever need to be.
	codegen [maxNumLit + maxNumDist + 1]byte

	literalEncoding *huffmanEncoder
	offsetEncoding  *huffmanEncoder
	codegenEncoding *huffmanEncoder
}

// NewWriter returns a Writer that emits DEFLATE blocks to dst.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{
		bw:              NewBitWriter(dst),
		literalEncoding: newHuffmanEncoder(maxNumLit),
		offsetEncoding:  newHuffmanEncoder(maxNumDist),
		codegenEncoding: newHuffmanEncoder(numCodes),
	}
}

// Reset rebinds w to a new sink, clearing the bit buffer and sticky
// error. Frequency tables need no explicit reset: every block-writing
// method re-populates them from scratch before using them.
func (w *Writer) Reset(dst io.Writer) {
	w.bw.Reset(dst)
}

// Err returns the first sink error latched by w, if any.
func (w *Writer) Err() error {
	return w.bw.Err()
}

// Flush byte-aligns and pushes any buffered bits to the sink.
func (w *Writer) Flush() {
	w.bw.Flush()
}

// huffOffsetEncoding is the process-wide "offsets unused" encoder
// WriteBlockHuff uses in place of a per-block offset encoding: the
// dynamic offset tree still needs exactly one symbol so HDIST is valid,
// but no match ever references it.
var huffOffsetEncoding = func() *huffmanEncoder {
	h := newHuffmanEncoder(maxNumDist)
	h.codes[0] = hcode{code: 0, len: 1}
	return h
}()

// indexTokens zeroes and repopulates literalFreq/offsetFreq from
// tokens, folds in the implicit end-of-block symbol, builds
// literalEncoding/offsetEncoding, and returns the trimmed alphabet
// sizes used by the dynamic header's HLIT/HDIST fields.
func (w *Writer) indexTokens(tokens []Token) (numLiterals, numOffsets int) {
	for i := range w.literalFreq {
		w.literalFreq[i] = 0
	}
	for i := range w.offsetFreq {
		w.offsetFreq[i] = 0
	}

	for _, t := range tokens {
		if t.IsLiteral() {
			w.literalFreq[t.Literal()]++
			continue
		}
		length, offset := t.Length(), t.Offset()
		w.literalFreq[257+lengthCode(length)]++
		w.offsetFreq[offsetCode(offset)]++
	}
	w.literalFreq[endBlockMarker]++

	numLiterals = len(w.literalFreq)
	for numLiterals > 0 && w.literalFreq[numLiterals-1] == 0 {
		numLiterals--
	}
	numOffsets = len(w.offsetFreq)
	for numOffsets > 0 && w.offsetFreq[numOffsets-1] == 0 {
		numOffsets--
	}
	if numOffsets == 0 {
		w.offsetFreq[0] = 1
		numOffsets = 1
	}

	w.literalEncoding.generate(w.literalFreq[:], maxCodeLen)
	w.offsetEncoding.generate(w.offsetFreq[:], maxCodeLen)
	return numLiterals, numOffsets
}

// generateCodegen concatenates the literal and offset code-length
// tables, run-length-encodes them in place per RFC 1951 §3.2.7, and
// builds codegenEncoding from the resulting symbol frequencies. offEnc
// lets WriteBlockHuff substitute huffOffsetEncoding for the per-block
// offset encoding.
func (w *Writer) generateCodegen(numLiterals, numOffsets int, offEnc *huffmanEncoder) {
	for i := range w.codegenFreq {
		w.codegenFreq[i] = 0
	}

	codegen := w.codegen[:]
	for i := 0; i < numLiterals; i++ {
		codegen[i] = uint8(w.literalEncoding.codes[i].len)
	}
	for i := 0; i < numOffsets; i++ {
		codegen[numLiterals+i] = uint8(offEnc.codes[i].len)
	}
	codegen[numLiterals+numOffsets] = badCode

	size := codegen[0]
	count := 1
	outIndex := 0
	for inIndex := 1; size != badCode; inIndex++ {
		nextSize := codegen[inIndex]
		if nextSize == size {
			count++
			continue
		}

		if size != 0 {
			codegen[outIndex] = size
			outIndex++
			w.codegenFreq[size]++
			count--
			for count >= 3 {
				n := 6
				if n > count {
					n = count
				}
				codegen[outIndex] = 16
				outIndex++
				codegen[outIndex] = uint8(n - 3)
				outIndex++
				w.codegenFreq[16]++
				count -= n
			}
		} else {
			for count >= 11 {
				n := 138
				if n > count {
					n = count
				}
				codegen[outIndex] = 18
				outIndex++
				codegen[outIndex] = uint8(n - 11)
				outIndex++
				w.codegenFreq[18]++
				count -= n
			}
			if count >= 3 {
				codegen[outIndex] = 17
				outIndex++
				codegen[outIndex] = uint8(count - 3)
				outIndex++
				w.codegenFreq[17]++
				count = 0
			}
		}

		count--
		for ; count >= 0; count-- {
			codegen[outIndex] = size
			outIndex++
			w.codegenFreq[size]++
		}

		size = nextSize
		count = 1
	}
	codegen[outIndex] = badCode

	w.codegenEncoding.generate(w.codegenFreq[:], maxCodeLenCodegen)
}

// numCodegens returns the number of codegen symbols to emit, trimmed
// from the tail while the permuted-order length is zero, floored at 4.
func (w *Writer) numCodegens() int {
	n := numCodes
	for n > 4 && w.codegenEncoding.codes[codeOrder[n-1]].len == 0 {
		n--
	}
	return n
}

// extraBitSize sums, over every length and offset code actually used,
// freq[code] * the number of extra bits that code carries. Codes with
// zero extra bits (length codes below 265, offset codes below 4)
// contribute nothing automatically since their table entries are zero.
func (w *Writer) extraBitSize() int64 {
	var total int64
	for code, nb := range lengthExtraBits {
		if nb > 0 {
			total += int64(w.literalFreq[257+code]) * int64(nb)
		}
	}
	for code, nb := range offsetExtraBits {
		if nb > 0 {
			total += int64(w.offsetFreq[code]) * int64(nb)
		}
	}
	return total
}

// fixedSize returns the bit length of encoding the current frequency
// tables with the fixed literal/offset encodings.
func (w *Writer) fixedSize(extraBits int64) int64 {
	return 3 + fixedLiteralEncoding.bitLength(w.literalFreq[:]) + fixedOffsetEncoding.bitLength(w.offsetFreq[:]) + extraBits
}

// dynamicSize returns the bit length of encoding the current frequency
// tables with literalEncoding/offEnc plus a freshly generated codegen
// header, and the trimmed codegen symbol count.
func (w *Writer) dynamicSize(extraBits int64, offEnc *huffmanEncoder) (size int64, numCodegens int) {
	numCodegens = w.numCodegens()
	header := int64(3+5+5+4) + int64(3*numCodegens) + w.codegenEncoding.bitLength(w.codegenFreq[:]) +
		int64(w.codegenFreq[16])*2 + int64(w.codegenFreq[17])*3 + int64(w.codegenFreq[18])*7
	size = header + w.literalEncoding.bitLength(w.literalFreq[:]) + offEnc.bitLength(w.offsetFreq[:]) + extraBits
	return size, numCodegens
}

// storedSize reports the bit length of a stored block holding input, and
// whether input is small enough to be stored at all.
func storedSize(input []byte) (size int64, storable bool) {
	if input == nil {
		return 0, false
	}
	if len(input) > 65535 {
		return 0, false
	}
	return int64(len(input)+5) * 8, true
}

// writeCodegen emits the numCodegens permuted code-length-code lengths
// followed by the RLE-compressed codegen stream.
func (w *Writer) writeCodegen(numCodegens int) {
	for i := 0; i < numCodegens; i++ {
		w.bw.WriteBits(uint32(w.codegenEncoding.codes[codeOrder[i]].len), 3)
	}

	i := 0
	for {
		sym := w.codegen[i]
		i++
		if sym == badCode {
			return
		}
		w.bw.WriteCode(w.codegenEncoding.codes[sym])
		switch sym {
		case 16:
			w.bw.WriteBits(uint32(w.codegen[i]), 2)
			i++
		case 17:
			w.bw.WriteBits(uint32(w.codegen[i]), 3)
			i++
		case 18:
			w.bw.WriteBits(uint32(w.codegen[i]), 7)
			i++
		}
	}
}

// writeTokens writes every literal or match token with litEnc/offEnc,
// followed by the end-of-block symbol.
func (w *Writer) writeTokens(tokens []Token, litEnc, offEnc *huffmanEncoder) {
	for _, t := range tokens {
		if w.bw.Err() != nil {
			return
		}
		if t.IsLiteral() {
			w.bw.WriteCode(litEnc.codes[t.Literal()])
			continue
		}

		length := t.Length()
		lc := lengthCode(length)
		w.bw.WriteCode(litEnc.codes[257+lc])
		if nb := lengthExtraBits[lc]; nb > 0 {
			w.bw.WriteBits(length-lengthBase[lc], uint8(nb))
		}

		offset := t.Offset()
		oc := offsetCode(offset)
		w.bw.WriteCode(offEnc.codes[oc])
		if nb := offsetExtraBits[oc]; nb > 0 {
			w.bw.WriteBits(offset-offsetBase[oc], uint8(nb))
		}
	}
	w.bw.WriteCode(litEnc.codes[endBlockMarker])
}

func (w *Writer) writeStoredBlock(input []byte, eof bool) {
	w.bw.WriteStoredHeader(len(input), eof)
	w.bw.WriteBytes(input)
}

// WriteBlock encodes tokens as fixed-Huffman, dynamic-Huffman, or
// stored, whichever is smallest.
func (w *Writer) WriteBlock(tokens []Token, eof bool, input []byte) error {
	if w.bw.Err() != nil {
		return w.bw.Err()
	}

	numLiterals, numOffsets := w.indexTokens(tokens)

	storedBytes, storable := storedSize(input)
	var extraBits int64
	if storable {
		extraBits = w.extraBitSize()
	}

	chosen := w.fixedSize(extraBits)

	w.generateCodegen(numLiterals, numOffsets, w.offsetEncoding)
	dynamicBytes, numCodegens := w.dynamicSize(extraBits, w.offsetEncoding)
	useDynamic := dynamicBytes < chosen
	if useDynamic {
		chosen = dynamicBytes
	}

	if storable && storedBytes < chosen {
		w.writeStoredBlock(input, eof)
		return w.bw.Err()
	}

	if useDynamic {
		w.bw.WriteDynamicHeader(numLiterals, numOffsets, numCodegens, eof)
		w.writeCodegen(numCodegens)
		w.writeTokens(tokens, w.literalEncoding, w.offsetEncoding)
	} else {
		w.bw.WriteFixedHeader(eof)
		w.writeTokens(tokens, fixedLiteralEncoding, fixedOffsetEncoding)
	}
	return w.bw.Err()
}

// WriteBlockDynamic always encodes dynamic-Huffman, unless a stored
// block would be smaller than the dynamic size plus 1/16th of it.
func (w *Writer) WriteBlockDynamic(tokens []Token, eof bool, input []byte) error {
	if w.bw.Err() != nil {
		return w.bw.Err()
	}

	numLiterals, numOffsets := w.indexTokens(tokens)

	storedBytes, storable := storedSize(input)
	var extraBits int64
	if storable {
		extraBits = w.extraBitSize()
	}

	w.generateCodegen(numLiterals, numOffsets, w.offsetEncoding)
	dynamicBytes, numCodegens := w.dynamicSize(extraBits, w.offsetEncoding)

	if storable && storedBytes < dynamicBytes+dynamicBytes>>4 {
		w.writeStoredBlock(input, eof)
		return w.bw.Err()
	}

	w.bw.WriteDynamicHeader(numLiterals, numOffsets, numCodegens, eof)
	w.writeCodegen(numCodegens)
	w.writeTokens(tokens, w.literalEncoding, w.offsetEncoding)
	return w.bw.Err()
}

// histogram tallies b's byte values into freq in place. freq must be at
// least 256 long. Implemented as explicit indexing, not a reslice of b.
func histogram(b []byte, freq []int32) {
	for _, c := range b {
		freq[c]++
	}
}

// WriteBlockHuff treats every byte of input as a literal token with no
// distance codes, then runs the same dynamic-vs-stored comparison
// WriteBlockDynamic uses.
func (w *Writer) WriteBlockHuff(eof bool, input []byte) error {
	if w.bw.Err() != nil {
		return w.bw.Err()
	}

	for i := range w.literalFreq {
		w.literalFreq[i] = 0
	}
	histogram(input, w.literalFreq[:256])
	w.literalFreq[endBlockMarker] = 1

	numLiterals := len(w.literalFreq)
	for numLiterals > 257 && w.literalFreq[numLiterals-1] == 0 {
		numLiterals--
	}
	w.literalEncoding.generate(w.literalFreq[:], maxCodeLen)

	for i := range w.offsetFreq {
		w.offsetFreq[i] = 0
	}
	w.offsetFreq[0] = 1
	const numOffsets = 1

	w.generateCodegen(numLiterals, numOffsets, huffOffsetEncoding)
	extraBits := w.extraBitSize()
	dynamicBytes, numCodegens := w.dynamicSize(extraBits, huffOffsetEncoding)

	storedBytes, storable := storedSize(input)
	if storable && storedBytes < dynamicBytes+dynamicBytes>>4 {
		w.writeStoredBlock(input, eof)
		return w.bw.Err()
	}

	w.bw.WriteDynamicHeader(numLiterals, numOffsets, numCodegens, eof)
	w.writeCodegen(numCodegens)
	for _, b := range input {
		if w.bw.Err() != nil {
			return w.bw.Err()
		}
		w.bw.WriteCode(w.literalEncoding.codes[b])
	}
	w.bw.WriteCode(w.literalEncoding.codes[endBlockMarker])
	return w.bw.Err()
}
