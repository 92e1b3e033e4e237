// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"math/big"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	bigRadix  = big.NewInt(58)
	bigZero   = big.NewInt(0)
	decodeMap [256]int8
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range base58Alphabet {
		decodeMap[c] = int8(i)
	}
}

// Base58Encode encodes b using the Bitcoin base58 alphabet, preserving
// leading zero bytes as leading '1' characters the same way the teacher's
// address encoding expects.
func Base58Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)

	answer := make([]byte, 0, len(b)*138/100+1)
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		answer = append(answer, base58Alphabet[mod.Int64()])
	}

	for _, i := range b {
		if i != 0 {
			break
		}
		answer = append(answer, base58Alphabet[0])
	}

	reverse(answer)
	return string(answer)
}

// Base58Decode reverses Base58Encode. It returns an error if s contains a
// character outside the base58 alphabet.
func Base58Decode(s string) ([]byte, error) {
	answer := big.NewInt(0)
	scratch := new(big.Int)
	for _, r := range s {
		if r > 255 || decodeMap[r] == -1 {
			return nil, ErrInvalidBase58Char
		}
		scratch.SetInt64(int64(decodeMap[r]))
		answer.Mul(answer, bigRadix)
		answer.Add(answer, scratch)
	}

	decoded := answer.Bytes()
	numZeros := 0
	for numZeros < len(s) && s[numZeros] == base58Alphabet[0] {
		numZeros++
	}

	out := make([]byte, numZeros+len(decoded))
	copy(out[numZeros:], decoded)
	return out, nil
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
