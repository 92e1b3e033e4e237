// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/ledger"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgercfg"
	"github.com/ledgerkit/ledgercore/ledgertypes"
	"github.com/ledgerkit/ledgercore/network"
)

// testAddress1 is a real Base58Check-encoded pay-to-pubkey-hash address
// under VelaTestNetParams, needed now that UpdateHistory decodes every
// address's hash160 itself instead of trusting a caller-supplied value.
var testAddress1 = ledgercfg.VelaTestNetParams.AddressForHash160([20]byte{1, 2, 3})

type fakeAccount struct {
	id          string
	gapCalls    int
	newAddrs    [][]string
	addresses   []string
}

func (a *fakeAccount) ID() string { return a.id }

func (a *fakeAccount) EnsureAddressGap(ctx context.Context) ([]string, error) {
	call := a.gapCalls
	a.gapCalls++
	if call >= len(a.newAddrs) {
		return nil, nil
	}
	return a.newAddrs[call], nil
}

func (a *fakeAccount) GetAddresses(ctx context.Context, maxUsedTimes *int) ([]string, error) {
	return a.addresses, nil
}

func (a *fakeAccount) GetUnspentOutputs(ctx context.Context) ([]ledgerapi.UnspentOutput, error) {
	return nil, nil
}

func (a *fakeAccount) GetPrivateKey(chain, position uint32) ([]byte, error) {
	return []byte{byte(chain), byte(position)}, nil
}

var _ ledgerapi.Account = (*fakeAccount)(nil)

func identityDecode(raw []byte) (*ledgertypes.Transaction, error) {
	return &ledgertypes.Transaction{Raw: raw}, nil
}

func TestUpdateAccountRestoresThenSubscribes(t *testing.T) {
	ctx := context.Background()
	net := network.NewFake()
	net.HeaderCount = 0

	l, err := ledger.New(ledgercfg.VelaTestNetParams, t.TempDir(), net, identityDecode)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	account := &fakeAccount{
		id:        "acct1",
		newAddrs:  [][]string{{testAddress1}},
		addresses: []string{testAddress1},
	}
	net.Histories[testAddress1] = nil
	net.Statuses[testAddress1] = ""

	l.AddAccount(account)
	require.NoError(t, l.UpdateAccount(ctx, account))
	require.Equal(t, 2, account.gapCalls)
}

func TestBroadcastForwardsToNetwork(t *testing.T) {
	ctx := context.Background()
	net := network.NewFake()
	net.BroadcastTxID = "deadbeef"

	l, err := ledger.New(ledgercfg.VelaTestNetParams, t.TempDir(), net, identityDecode)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	txid, err := l.Broadcast(ctx, "0102")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", txid)
}

func TestGetLocalStatusMatchesEmptyHistoryDigest(t *testing.T) {
	ctx := context.Background()
	net := network.NewFake()

	l, err := ledger.New(ledgercfg.VelaTestNetParams, t.TempDir(), net, identityDecode)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	status, err := l.GetLocalStatus(ctx, "unknown-address")
	require.NoError(t, err)
	require.Len(t, status, 64) // hex-encoded SHA256 digest
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", status)
}

func TestPrivateKeyForAddressRejectsUnknownAddress(t *testing.T) {
	ctx := context.Background()
	net := network.NewFake()

	l, err := ledger.New(ledgercfg.VelaTestNetParams, t.TempDir(), net, identityDecode)
	require.NoError(t, err)
	require.NoError(t, l.Start(ctx))
	defer l.Stop(ctx)

	account := &fakeAccount{id: "acct1"}
	l.AddAccount(account)

	_, err = l.PrivateKeyForAddress(ctx, "addr-not-seen")
	require.Error(t, err)
}
