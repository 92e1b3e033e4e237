// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

// Hash160ToAddress encodes a hash160 as a Base58Check pay-to-pubkey-hash
// address under the given ledger's single-byte address prefix:
//
//	payload  = prefix ‖ h160
//	address  = Base58(payload ‖ DoubleSha256(payload)[:4])
func Hash160ToAddress(h160 [20]byte, pubKeyAddrPrefix byte) string {
	payload := make([]byte, 0, 1+20+4)
	payload = append(payload, pubKeyAddrPrefix)
	payload = append(payload, h160[:]...)

	checksum := DoubleSha256(payload)
	payload = append(payload, checksum[:4]...)

	return Base58Encode(payload)
}

// PublicKeyToAddress is a convenience wrapper computing Hash160ToAddress of
// hash160(pubKey).
func PublicKeyToAddress(pubKey []byte, pubKeyAddrPrefix byte) string {
	return Hash160ToAddress(Hash160(pubKey), pubKeyAddrPrefix)
}

// AddressToHash160 decodes a Base58Check address and returns the embedded
// hash160, slicing bytes [1:21] of the decoded payload.
//
// This intentionally does not re-verify the checksum: callers reach this
// path with addresses already accepted over the wire from a trusted local
// database or the indexing server's own JSON, and re-hashing every address
// on every lookup would be wasted work on that hot path. Use
// AddressToHash160Strict when decoding addresses typed in by a user or
// otherwise untrusted.
func AddressToHash160(address string) ([20]byte, error) {
	decoded, err := Base58Decode(address)
	if err != nil {
		return [20]byte{}, err
	}
	if len(decoded) < 21 {
		return [20]byte{}, ErrInvalidAddressLength
	}
	var h160 [20]byte
	copy(h160[:], decoded[1:21])
	return h160, nil
}

// AddressToHash160Strict is the defense-in-depth variant of
// AddressToHash160: it recomputes and verifies the Base58Check checksum
// before returning the embedded hash160.
func AddressToHash160Strict(address string) ([20]byte, error) {
	decoded, err := Base58Decode(address)
	if err != nil {
		return [20]byte{}, err
	}
	if len(decoded) != 25 {
		return [20]byte{}, ErrInvalidAddressLength
	}
	payload, checksum := decoded[:21], decoded[21:]
	want := DoubleSha256(payload)
	for i := 0; i < 4; i++ {
		if want[i] != checksum[i] {
			return [20]byte{}, ErrBadChecksum
		}
	}
	var h160 [20]byte
	copy(h160[:], payload[1:21])
	return h160, nil
}
