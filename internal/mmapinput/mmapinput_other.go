// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package mmapinput

import "os"

// File is a read-only view of a file's contents, loaded in full on
// platforms without an mmap syscall.
type File struct {
	Bytes []byte
}

// Open reads name fully into memory.
func Open(name string) (*File, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &File{Bytes: b}, nil
}

// Close is a no-op on this platform: there is no mapping to release.
func (m *File) Close() error {
	return nil
}
