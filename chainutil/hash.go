// Copyright (c) 2013-2015 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD160 is required by hash160, the standard Bitcoin-family address hash.
)

// ErrInvalidBase58Char is returned by Base58Decode and AddressToHash160 when
// the input contains a byte outside the base58 alphabet.
var ErrInvalidBase58Char = errors.New("chainutil: invalid base58 character")

// ErrInvalidAddressLength is returned when a decoded address payload has the
// wrong length: AddressToHash160 requires at least a version byte and a
// 20-byte hash160, AddressToHash160Strict exactly those plus a 4-byte
// checksum.
var ErrInvalidAddressLength = errors.New("chainutil: decoded address has invalid length")

// ErrBadChecksum is returned by the strict address decoder when the
// payload's checksum does not match its trailing four bytes.
var ErrBadChecksum = errors.New("chainutil: address checksum mismatch")

// Sha256 returns the single SHA256 digest of b.
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// DoubleSha256 returns SHA256(SHA256(b)), the hash used for txids, Merkle
// tree nodes and Base58Check checksums throughout the ledger.
func DoubleSha256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second
}

// Hash160 returns RIPEMD160(SHA256(b)), the standard Bitcoin-family address
// hash.
func Hash160(b []byte) [20]byte {
	sha := sha256.Sum256(b)
	ripe := ripemd160.New()
	ripe.Write(sha[:]) //nolint:errcheck // ripemd160.Write never returns an error
	var out [20]byte
	copy(out[:], ripe.Sum(nil))
	return out
}
