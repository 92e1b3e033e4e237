// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
	"github.com/ledgerkit/ledgercore/network"
)

func TestFakeGetHeadersRespectsMaxCount(t *testing.T) {
	f := network.NewFake()
	f.HeaderCount = 3
	f.Headers[0] = []byte{0x00}
	f.Headers[1] = []byte{0x01}
	f.Headers[2] = []byte{0x02}

	count, raw, err := f.GetHeaders(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, []byte{0x00, 0x01}, raw)
}

func TestFakeGetHistoryReturnsConfiguredEntries(t *testing.T) {
	f := network.NewFake()
	f.Histories["addr1"] = []ledgertypes.HistoryEntry{{TxID: "aa", Height: 5}}

	entries, err := f.GetHistory(context.Background(), "addr1")
	require.NoError(t, err)
	require.Equal(t, []ledgertypes.HistoryEntry{{TxID: "aa", Height: 5}}, entries)
}

func TestFakeHeaderNotificationsDeliversPushedValue(t *testing.T) {
	f := network.NewFake()
	ch := f.HeaderNotifications()

	f.PushHeaders([]ledgerapi.HeaderNotification{{Height: 101, Raw: []byte{0xaa}}})

	notifications := <-ch
	require.Len(t, notifications, 1)
	require.Equal(t, int32(101), notifications[0].Height)
}

func TestFakeConnectedResolvesAfterStart(t *testing.T) {
	f := network.NewFake()
	require.False(t, f.IsConnected())

	require.NoError(t, f.Start(context.Background()))

	select {
	case <-f.Connected():
	default:
		t.Fatal("Connected() channel should be closed after Start")
	}
	require.True(t, f.IsConnected())
}

func TestFakeBroadcastRecordsRawHex(t *testing.T) {
	f := network.NewFake()
	f.BroadcastTxID = "deadbeef"

	txid, err := f.Broadcast(context.Background(), "0102")
	require.NoError(t, err)
	require.Equal(t, "deadbeef", txid)
	require.Equal(t, []string{"0102"}, f.Broadcasts)
}
