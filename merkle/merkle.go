// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle reconstructs a Merkle root from a leaf txid and an ordered
// sibling branch, the verification step the history synchronizer (C8) runs
// against a header's merkle_root before marking a transaction verified.
package merkle

import (
	"encoding/hex"

	"github.com/kkdai/bstream"

	"github.com/ledgerkit/ledgercore/chainutil"
)

// Branch is one sibling hash on the path from a leaf txid to the Merkle
// root, as a server transmits it: hex, in display (big-endian) byte order.
type Branch string

// packPositions renders the branch_positions bitmask as a byte stream where
// bit i (counting from the least significant bit of mask) is the i-th bit a
// sequential MSB-first bit reader yields — the same convention bstream uses
// when decoding btcd-style compact filters, reused here to walk the
// left/right flags instead of golomb-coded set membership.
func packPositions(mask uint64, n int) []byte {
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if (mask>>uint(i))&1 == 1 {
			out[i/8] |= 1 << uint(7-(i%8))
		}
	}
	return out
}

// Verify reconstructs the Merkle root for txid given its ordered sibling
// branch and the branch_positions bitmask (bit i set means the i-th sibling
// sits on the left of the running hash), and reports whether it equals
// merkleRoot. Both txid and merkleRoot are in the display (big-endian) hex
// form a server and a header adapter hand back, matching spec.md 4.2's
// "all comparisons happen on the display form" rule.
func Verify(txid string, branch []Branch, positions uint64, merkleRoot string) (bool, error) {
	root, err := Reconstruct(txid, branch, positions)
	if err != nil {
		return false, err
	}
	return root == merkleRoot, nil
}

// Reconstruct walks the sibling branch and returns the resulting Merkle
// root in display hex form.
func Reconstruct(txid string, branch []Branch, positions uint64) (string, error) {
	working, err := reversedBytes(txid)
	if err != nil {
		return "", err
	}

	reader := bstream.NewBStreamReader(packPositions(positions, len(branch)))
	for _, b := range branch {
		sibling, err := reversedBytes(string(b))
		if err != nil {
			return "", err
		}

		onLeft, err := reader.ReadBit()
		if err != nil {
			return "", err
		}

		var combined []byte
		if onLeft {
			combined = append(append([]byte{}, sibling...), working...)
		} else {
			combined = append(append([]byte{}, working...), sibling...)
		}
		next := chainutil.DoubleSha256(combined)
		working = next[:]
	}

	return hex.EncodeToString(reverse(working)), nil
}

// reversedBytes decodes a display-order (big-endian) hex hash into its
// internal (little-endian) byte order.
func reversedBytes(displayHex string) ([]byte, error) {
	raw, err := hex.DecodeString(displayHex)
	if err != nil {
		return nil, err
	}
	return reverse(raw), nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
