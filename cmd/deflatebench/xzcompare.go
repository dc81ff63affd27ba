// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"math"
	"os"

	"github.com/therootcompany/xz"
)

// xzComparisonSize decodes an .xz-compressed sibling of path (path+".xz"),
// if one exists, and returns the size of the compressed file itself —
// giving the benchmark a second compressed-size data point from a
// dictionary-based codec to set next to this module's DEFLATE output.
// therootcompany/xz is decode-only, so this reads rather than produces
// the .xz file.
func xzComparisonSize(path string) (compressedSize int64, ok bool) {
	f, err := os.Open(path + ".xz")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, false
	}

	r, err := xz.NewReader(io.NewSectionReader(f, 0, math.MaxInt64), xz.DefaultDictMax)
	if err != nil {
		return 0, false
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return 0, false
	}

	return info.Size(), true
}
