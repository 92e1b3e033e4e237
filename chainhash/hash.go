// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 32-byte hash type shared by txids and
// Merkle roots throughout ledgercore, mirroring the teacher's
// chaincfg/chainhash convention without pulling in its block-header parsing.
package chainhash

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a hash produced by double-SHA256.
const HashSize = 32

// Hash is a double-SHA256 hash stored in internal (little-endian) byte
// order, the same representation the wire protocol uses for txids and
// Merkle roots.
type Hash [HashSize]byte

// String returns the hash in the reversed, display byte order used
// everywhere txids are printed and compared against server responses.
func (h Hash) String() string {
	var reversed Hash
	for i := 0; i < HashSize/2; i++ {
		reversed[i], reversed[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(reversed[:])
}

// NewHashFromStr parses a display-order (big-endian) hex string, such as a
// txid exactly as a server or block explorer would print it, into a Hash in
// internal byte order.
func NewHashFromStr(s string) (*Hash, error) {
	ret := new(Hash)
	if err := Decode(ret, s); err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode populates dst with the Hash represented by the display-order hex
// string src.
func Decode(dst *Hash, src string) error {
	if len(src) != HashSize*2 {
		return fmt.Errorf("chainhash: invalid hash string length %d, want %d", len(src), HashSize*2)
	}
	var reversed Hash
	if _, err := hex.Decode(reversed[:], []byte(src)); err != nil {
		return err
	}
	for i := 0; i < HashSize/2; i++ {
		dst[i], dst[HashSize-1-i] = reversed[HashSize-1-i], reversed[i]
	}
	return nil
}

// CloneBytes returns a newly allocated copy of the hash's internal-order
// bytes.
func (h Hash) CloneBytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// IsEqual reports whether h and target represent the same hash. A nil
// target is always treated as unequal, including when h is the zero hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if target == nil {
		return false
	}
	return *h == *target
}
