// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package headerstore is the durable, append-only implementation of
// ledgerapi.Headers (spec.md component C3), backed by
// github.com/syndtr/goleveldb — the database family the teacher's own
// daemon already lists as a supported backend. Parsing block headers
// beyond locating the fixed-offset merkle root is explicitly out of
// scope; headerstore only ever treats a header as an opaque 80-byte
// record.
package headerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/decred/dcrd/lru"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ledgerkit/ledgercore/chainhash"
	"github.com/ledgerkit/ledgercore/ledgerapi"
)

// HeaderSize is the fixed wire width of one header record: 4-byte version,
// 32-byte previous-block hash, 32-byte merkle root, 4-byte time, 4-byte
// bits, 4-byte nonce.
const HeaderSize = 80

// merkleRootOffset is where the 32-byte merkle root lives within a
// HeaderSize record, in internal (wire) byte order.
const merkleRootOffset = 4 + chainhash.HashSize

// ErrHeightGap is returned when Connect is asked to append at a height
// that does not directly extend the store.
var ErrHeightGap = errors.New("headerstore: height does not extend store")

// ErrNotFound is returned by MerkleRootAt for a height the store has never
// stored.
var ErrNotFound = errors.New("headerstore: height not found")

// ErrShortHeader is returned when raw passed to Connect is not a whole
// number of HeaderSize records.
var ErrShortHeader = errors.New("headerstore: raw is not a multiple of the header size")

// Store is a leveldb-backed, height-indexed log of fixed-width header
// records with an in-memory cache over the hot merkle-root lookup path.
type Store struct {
	mu     sync.RWMutex
	db     *leveldb.DB
	height int32
	cache  *lru.Map[int32, chainhash.Hash]
}

var _ ledgerapi.Headers = (*Store)(nil)

// heightKey renders height as a big-endian 4-byte key so leveldb's natural
// byte-order iteration matches height order.
func heightKey(height int32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], uint32(height))
	return key[:]
}

// New opens (creating if necessary) a header store at path.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("headerstore: open %s: %w", path, err)
	}

	s := &Store{
		db:    db,
		cache: lru.NewMap[int32, chainhash.Hash](4096),
	}
	if err := s.loadHeight(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// loadHeight scans the last key to recover the current height on reopen.
func (s *Store) loadHeight() error {
	iter := s.db.NewIterator(&util.Range{}, nil)
	defer iter.Release()

	var last int32 = -1
	for iter.Next() {
		last = int32(binary.BigEndian.Uint32(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("headerstore: scan height: %w", err)
	}
	s.height = last + 1
	return nil
}

// Touch satisfies the Headers adapter's touch() contract (spec.md section 6)
// called once before the first catch-up. It is a no-op: New has already
// created and opened the backing leveldb directory.
func (s *Store) Touch() error {
	return nil
}

// TouchPath creates dir (and any parents) with the restrictive permissions
// the ledger orchestrator expects of ledger-adjacent state, for use before
// New opens the store.
func TouchPath(dir string) error {
	return os.MkdirAll(dir, 0o700)
}

// Height returns the number of headers currently stored.
func (s *Store) Height() int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// Connect appends raw, the wire-encoded concatenation of one or more
// HeaderSize records starting at startHeight, to the store.
func (s *Store) Connect(ctx context.Context, startHeight int32, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	if len(raw)%HeaderSize != 0 {
		return ErrShortHeader
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if startHeight != s.height {
		return fmt.Errorf("%w: store is at %d, got start %d", ErrHeightGap, s.height, startHeight)
	}

	batch := new(leveldb.Batch)
	count := len(raw) / HeaderSize
	for i := 0; i < count; i++ {
		height := startHeight + int32(i)
		record := raw[i*HeaderSize : (i+1)*HeaderSize]
		batch.Put(heightKey(height), record)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("headerstore: write batch: %w", err)
	}

	s.height = startHeight + int32(count)
	log.Debugf("connected %d header(s), height now %d", count, s.height)
	return nil
}

// MerkleRootAt returns the merkle root of the header at height.
func (s *Store) MerkleRootAt(height int32) (chainhash.Hash, error) {
	if root, ok := s.cache.Get(height); ok {
		return root, nil
	}

	s.mu.RLock()
	record, err := s.db.Get(heightKey(height), nil)
	s.mu.RUnlock()
	if errors.Is(err, leveldb.ErrNotFound) {
		return chainhash.Hash{}, fmt.Errorf("%w: height %d", ErrNotFound, height)
	}
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("headerstore: get height %d: %w", height, err)
	}
	if len(record) != HeaderSize {
		return chainhash.Hash{}, fmt.Errorf("headerstore: corrupt record at height %d", height)
	}

	var root chainhash.Hash
	copy(root[:], record[merkleRootOffset:merkleRootOffset+chainhash.HashSize])
	s.cache.Put(height, root)
	return root, nil
}

// Close releases the underlying leveldb handle.
func (s *Store) Close() error {
	return s.db.Close()
}
