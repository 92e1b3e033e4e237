// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgercfg

// VelaMainNetParams and VelaTestNetParams are the two variants shipped with
// ledgercore out of the box, named after a fictional Bitcoin-derived coin
// used throughout this module's tests and examples. Downstream ledgers
// register their own Params from an init() the same way, per the DESIGN
// NOTES in spec.md section 9.
var (
	VelaMainNetParams = &Params{
		Name:                     "Vela Mainnet",
		Symbol:                   "VEL",
		NetworkName:              "mainnet",
		PubKeyHashAddrID:         0x1c,
		ScriptHashAddrID:         0x3c,
		ExtendedPublicKeyPrefix:  [4]byte{0x04, 0x88, 0xb2, 0x1e},
		ExtendedPrivateKeyPrefix: [4]byte{0x04, 0x88, 0xad, 0xe4},
		WIFPrefix:                0x1c,
		DefaultFeePerByte:        10,
	}

	VelaTestNetParams = &Params{
		Name:                     "Vela Testnet",
		Symbol:                   "VEL",
		NetworkName:              "testnet",
		PubKeyHashAddrID:         0x6f,
		ScriptHashAddrID:         0xc4,
		ExtendedPublicKeyPrefix:  [4]byte{0x04, 0x35, 0x87, 0xcf},
		ExtendedPrivateKeyPrefix: [4]byte{0x04, 0x35, 0x83, 0x94},
		WIFPrefix:                0xef,
		DefaultFeePerByte:        1,
	}
)

func init() {
	Register(VelaMainNetParams)
	Register(VelaTestNetParams)
}
