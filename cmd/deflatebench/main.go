// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command deflatebench compresses a set of files with the root
// package's DEFLATE block writer and reports, per file, the input size,
// the compressed size, whether the result came from the block store, and
// (when available) a dictionary-codec comparison point. It does not
// report which block encoding was chosen. It is a separate main package: the
// root library never imports it, and it never re-exports library
// types beyond what it needs for its own flags.
package main

import (
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/corvidware/deflate"
	"github.com/corvidware/deflate/internal/blockstore"
	"github.com/corvidware/deflate/internal/mmapinput"
	"github.com/corvidware/deflate/internal/tokencache"
)

func main() {
	var (
		pattern  = flag.String("glob", "**/*", "doublestar pattern of files to compress, relative to -root")
		root     = flag.String("root", ".", "directory the glob pattern is rooted at")
		cacheDir = flag.String("cache", "", "pebble block-store directory; disabled if empty")
		cacheCap = flag.Int("tokencache", 256, "number of distinct blocks to memoize in the in-process token cache")
		dynamic  = flag.Bool("dynamic", false, "use dynamic Huffman blocks (stored only when within 1/16th of the dynamic size) instead of choosing the smallest of stored/fixed/dynamic")
	)
	flag.Parse()

	if err := run(*root, *pattern, *cacheDir, *cacheCap, *dynamic); err != nil {
		slog.Error("deflatebench failed", "error", err)
		os.Exit(1)
	}
}

func run(root, pattern, cacheDir string, cacheCap int, dynamic bool) error {
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return err
	}

	var store *blockstore.Store
	if cacheDir != "" {
		store, err = blockstore.Open(cacheDir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	tc := tokencache.New(cacheCap)

	for _, rel := range matches {
		full := filepath.Join(root, rel)
		info, err := fs.Stat(fsys, rel)
		if err != nil || info.IsDir() {
			continue
		}
		if err := compressFile(full, tc, store, dynamic); err != nil {
			slog.Error("compress failed", "file", full, "error", err)
		}
	}
	return nil
}

func compressFile(path string, tc *tokencache.Cache, store *blockstore.Store, dynamic bool) error {
	mm, err := mmapinput.Open(path)
	if err != nil {
		return err
	}
	defer mm.Close()
	input := mm.Bytes

	if store != nil {
		if cached, ok, err := store.Lookup(input); err == nil && ok {
			logResult(path, len(input), len(cached), "blockstore-cache")
			return nil
		}
	}

	tokens := tc.Get(input, func(src []byte) []deflate.Token {
		return deflate.NewMatcher().FindMatches(nil, src)
	})

	var out trackedWriter
	w := deflate.NewWriter(&out)
	if dynamic {
		err = w.WriteBlockDynamic(tokens, true, input)
	} else {
		err = w.WriteBlock(tokens, true, input)
	}
	if err != nil {
		return err
	}
	w.Flush()
	if err := w.Err(); err != nil {
		return err
	}

	if store != nil {
		if err := store.Store(input, out.buf); err != nil {
			slog.Warn("blockstore write failed", "file", path, "error", err)
		}
	}

	logResult(path, len(input), len(out.buf), "encoded")
	return nil
}

func logResult(path string, inputSize, outputSize int, source string) {
	attrs := []any{"file", path, "input_bytes", inputSize, "output_bytes", outputSize, "source", source}
	if xzSize, ok := xzComparisonSize(path); ok {
		attrs = append(attrs, "xz_sibling_bytes", xzSize)
	}
	slog.Info("block compressed", attrs...)
}

// trackedWriter is the io.Writer Writer drains its bit buffer into; it
// just accumulates bytes for this driver's own size accounting.
type trackedWriter struct {
	buf []byte
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	return len(p), nil
}
