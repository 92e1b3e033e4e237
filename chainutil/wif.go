// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import "errors"

// ErrInvalidWIFLength is returned when a decoded WIF payload isn't a
// 32-byte private key plus the version byte and, for compressed keys, the
// trailing 0x01 marker.
var ErrInvalidWIFLength = errors.New("chainutil: invalid WIF payload length")

// PrivateKeyToWIF encodes a 32-byte private key in wallet import format
// under the given ledger's WIF version byte, always marking the key as
// corresponding to a compressed public key (trailing 0x01), matching
// spec.md 4.1.
func PrivateKeyToWIF(privateKey []byte, wifPrefix byte) string {
	payload := make([]byte, 0, 1+len(privateKey)+1+4)
	payload = append(payload, wifPrefix)
	payload = append(payload, privateKey...)
	payload = append(payload, 0x01)

	checksum := DoubleSha256(payload)
	payload = append(payload, checksum[:4]...)

	return Base58Encode(payload)
}

// DecodeWIF reverses PrivateKeyToWIF, verifying the checksum and returning
// the raw 32-byte private key and whether it was marked compressed.
func DecodeWIF(wif string) (privateKey []byte, compressed bool, err error) {
	decoded, err := Base58Decode(wif)
	if err != nil {
		return nil, false, err
	}
	if len(decoded) != 1+32+1+4 && len(decoded) != 1+32+4 {
		return nil, false, ErrInvalidWIFLength
	}

	payload := decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	want := DoubleSha256(payload)
	for i := 0; i < 4; i++ {
		if want[i] != checksum[i] {
			return nil, false, ErrBadChecksum
		}
	}

	compressed = len(payload) == 1+32+1
	priv := make([]byte, 32)
	copy(priv, payload[1:33])
	return priv, compressed, nil
}
