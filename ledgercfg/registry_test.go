// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgercfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/ledgercfg"
)

func TestBuiltinVariantsAreRegistered(t *testing.T) {
	p, ok := ledgercfg.Lookup("vel_mainnet")
	require.True(t, ok)
	require.Same(t, ledgercfg.VelaMainNetParams, p)

	p, ok = ledgercfg.Lookup("vel_testnet")
	require.True(t, ok)
	require.Same(t, ledgercfg.VelaTestNetParams, p)

	_, ok = ledgercfg.Lookup("nope_mainnet")
	require.False(t, ok)
}

func TestRegisterPanicsOnDuplicateID(t *testing.T) {
	dup := &ledgercfg.Params{Symbol: "VEL", NetworkName: "mainnet"}
	require.Panics(t, func() {
		ledgercfg.Register(dup)
	})
}

func TestRegisterAcceptsUniqueID(t *testing.T) {
	fresh := &ledgercfg.Params{Symbol: "ZZZ", NetworkName: "testnet-unique-zzz"}
	require.NotPanics(t, func() {
		ledgercfg.Register(fresh)
	})

	got, ok := ledgercfg.Lookup(fresh.ID())
	require.True(t, ok)
	require.Same(t, fresh, got)
}
