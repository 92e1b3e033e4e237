// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package headerstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/headerstore"
)

func makeHeader(merkleRoot byte) []byte {
	h := make([]byte, headerstore.HeaderSize)
	for i := 4 + 32; i < 4+32+32; i++ {
		h[i] = merkleRoot
	}
	return h
}

func openStore(t *testing.T) *headerstore.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := headerstore.New(filepath.Join(dir, "headers"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConnectAndMerkleRootAt(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	raw := append(makeHeader(0xaa), makeHeader(0xbb)...)
	require.NoError(t, s.Connect(ctx, 0, raw))
	require.Equal(t, int32(2), s.Height())

	root0, err := s.MerkleRootAt(0)
	require.NoError(t, err)
	require.Equal(t, byte(0xaa), root0[0])

	root1, err := s.MerkleRootAt(1)
	require.NoError(t, err)
	require.Equal(t, byte(0xbb), root1[0])
}

func TestConnectRejectsHeightGap(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.Connect(ctx, 5, makeHeader(0x01))
	require.True(t, errors.Is(err, headerstore.ErrHeightGap))
}

func TestMerkleRootAtUnknownHeight(t *testing.T) {
	s := openStore(t)
	_, err := s.MerkleRootAt(0)
	require.True(t, errors.Is(err, headerstore.ErrNotFound))
}

func TestConnectRejectsShortRaw(t *testing.T) {
	s := openStore(t)
	err := s.Connect(context.Background(), 0, []byte{0x01, 0x02})
	require.True(t, errors.Is(err, headerstore.ErrShortHeader))
}

func TestHeightPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headers")

	s, err := headerstore.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background(), 0, makeHeader(0x01)))
	require.NoError(t, s.Close())

	s2, err := headerstore.New(path)
	require.NoError(t, err)
	defer s2.Close()
	require.Equal(t, int32(1), s2.Height())
}
