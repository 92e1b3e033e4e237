// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/chainutil"
	"github.com/ledgerkit/ledgercore/merkle"
)

// buildTwoLeafRoot computes the Merkle root of a two-leaf tree by hand so
// the test doesn't depend on merkle.Reconstruct for its own fixture.
func buildTwoLeafRoot(t *testing.T, leftDisplay, rightDisplay string) string {
	t.Helper()
	left, err := hex.DecodeString(leftDisplay)
	require.NoError(t, err)
	right, err := hex.DecodeString(rightDisplay)
	require.NoError(t, err)
	reverseInPlace(left)
	reverseInPlace(right)

	combined := append(append([]byte{}, left...), right...)
	root := chainutil.DoubleSha256(combined)
	reverseInPlace(root[:])
	return hex.EncodeToString(root[:])
}

func reverseInPlace(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func TestVerifySingleBranchOnRight(t *testing.T) {
	leaf := "aa00000000000000000000000000000000000000000000000000000000aa"
	sibling := "bb00000000000000000000000000000000000000000000000000000000bb"
	root := buildTwoLeafRoot(t, leaf, sibling)

	ok, err := merkle.Verify(leaf, []merkle.Branch{merkle.Branch(sibling)}, 0, root)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifySingleBranchOnLeft(t *testing.T) {
	leaf := "aa00000000000000000000000000000000000000000000000000000000aa"
	sibling := "bb00000000000000000000000000000000000000000000000000000000bb"
	root := buildTwoLeafRoot(t, sibling, leaf)

	ok, err := merkle.Verify(leaf, []merkle.Branch{merkle.Branch(sibling)}, 1, root)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsWrongRoot(t *testing.T) {
	leaf := "aa00000000000000000000000000000000000000000000000000000000aa"
	sibling := "bb00000000000000000000000000000000000000000000000000000000bb"

	ok, err := merkle.Verify(leaf, []merkle.Branch{merkle.Branch(sibling)}, 0, "00")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestVerifyEmptyBranchMeansLeafIsRoot documents the resolved Open Question
// from spec.md 9: when get_merkle returns no siblings, a single-transaction
// block has the leaf's own txid as Merkle root, so verification degrades to
// a direct equality check rather than "cannot verify".
func TestVerifyEmptyBranchMeansLeafIsRoot(t *testing.T) {
	leaf := "aa00000000000000000000000000000000000000000000000000000000aa"

	ok, err := merkle.Verify(leaf, nil, 0, leaf)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = merkle.Verify(leaf, nil, 0, "bb")
	require.NoError(t, err)
	require.False(t, ok)
}
