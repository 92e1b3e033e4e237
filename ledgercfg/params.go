// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgercfg defines per-ledger-variant parameters and the registry
// mapping a symbol_network LedgerId to exactly one variant (spec.md's
// component R), generalizing the teacher's one-Params-value-per-network
// chaincfg convention to a multi-coin registry.
package ledgercfg

import (
	"fmt"
	"strings"

	"github.com/ledgerkit/ledgercore/chainutil"
)

// Params describes one ledger variant: the address/key-encoding prefixes a
// light client needs (spec.md 4.7) plus its default relay fee.
type Params struct {
	Name        string
	Symbol      string
	NetworkName string

	// PubKeyHashAddrID and ScriptHashAddrID are the single-byte Base58Check
	// version bytes for P2PKH and P2SH addresses respectively.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte

	// ExtendedPublicKeyPrefix and ExtendedPrivateKeyPrefix are the 4-byte
	// version prefixes for BIP32 xpub/xprv serialization.
	ExtendedPublicKeyPrefix  [4]byte
	ExtendedPrivateKeyPrefix [4]byte

	// WIFPrefix is the wallet-import-format version byte. The spec's
	// reference value (0x1c) is a per-ledger constant, not a universal one;
	// it is exposed here so every variant can declare its own.
	WIFPrefix byte

	// DefaultFeePerByte is charged absent an explicit override (spec.md
	// 4.6's fee_per_byte config key).
	DefaultFeePerByte int64
}

// ID returns the LedgerId ("<symbol>_<network>" lowercased) used as the
// registry key, matching spec.md section 3.
func (p *Params) ID() string {
	return strings.ToLower(p.Symbol) + "_" + strings.ToLower(p.NetworkName)
}

// AddressForHash160 encodes h160 as a P2PKH address under this variant's
// prefix.
func (p *Params) AddressForHash160(h160 [20]byte) string {
	return chainutil.Hash160ToAddress(h160, p.PubKeyHashAddrID)
}

// WIFForPrivateKey encodes a raw private key in this variant's WIF.
func (p *Params) WIFForPrivateKey(priv []byte) string {
	return chainutil.PrivateKeyToWIF(priv, p.WIFPrefix)
}

// FeePerByte returns the relay fee, in minor units, for a chunk of sizeBytes
// at this variant's default rate. Coin selection (C9) uses this to derive
// both the marginal cost of spending an input and the dust-threshold fee of
// the canonical pay-to-pubkey-hash change output (spec.md 4.5).
func (p *Params) FeePerByte(sizeBytes int) chainutil.Amount {
	return chainutil.Amount(p.DefaultFeePerByte * int64(sizeBytes))
}

// String implements fmt.Stringer for debug logging.
func (p *Params) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID())
}
