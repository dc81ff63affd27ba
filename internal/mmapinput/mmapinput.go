// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

// Package mmapinput memory-maps input files for the benchmarking
// driver, avoiding an io.ReadAll copy for large inputs.
package mmapinput

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// File is a memory-mapped, read-only view of a file's contents.
type File struct {
	Bytes []byte
	f     *os.File
}

// Open memory-maps name for reading. The returned File must be closed.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "mmapinput: open %s", name)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmapinput: stat %s", name)
	}
	size := info.Size()
	if size == 0 {
		return &File{f: f}, nil
	}
	b, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmapinput: mmap %s", name)
	}
	return &File{Bytes: b, f: f}, nil
}

// Close unmaps the file and releases its descriptor.
func (m *File) Close() error {
	if m.Bytes != nil {
		if err := unix.Munmap(m.Bytes); err != nil {
			m.f.Close()
			return errors.Wrap(err, "mmapinput: munmap")
		}
	}
	return m.f.Close()
}
