// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

// COIN is the number of minor units in one whole coin, shared by every
// registered ledger variant (spec.md section 4.5 references this constant
// when sizing the canonical pay-to-pubkey-hash output used to derive the
// dust-threshold fee).
const COIN = 1e8

// NullHash32 is the all-zero 32-byte placeholder used wherever a Merkle
// verifier or coin selector needs a syntactically valid but meaningless
// hash, mirroring torba's NULL_HASH32.
var NullHash32 = [32]byte{}
