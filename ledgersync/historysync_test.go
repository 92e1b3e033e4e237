// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgersync_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/chainhash"
	"github.com/ledgerkit/ledgercore/database"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgercfg"
	"github.com/ledgerkit/ledgercore/ledgersync"
	"github.com/ledgerkit/ledgercore/ledgertypes"
	"github.com/ledgerkit/ledgercore/network"
)

// testAddress is a real Base58Check-encoded address, needed since
// UpdateHistory now decodes every address's hash160 itself via
// chainutil.AddressToHash160 rather than trusting a caller-supplied value.
var testAddress = ledgercfg.VelaTestNetParams.AddressForHash160([20]byte{9, 9, 9})

// fakeHeaders is a minimal in-memory ledgerapi.Headers for tests that only
// need MerkleRootAt/Height, not durability.
type fakeHeaders struct {
	mu    sync.Mutex
	roots map[int32]chainhash.Hash
	height int32
}

func newFakeHeaders() *fakeHeaders {
	return &fakeHeaders{roots: make(map[int32]chainhash.Hash)}
}

func (f *fakeHeaders) Height() int32 { return f.height }

func (f *fakeHeaders) Connect(ctx context.Context, startHeight int32, raw []byte) error {
	return nil
}

func (f *fakeHeaders) MerkleRootAt(height int32) (chainhash.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roots[height], nil
}

func (f *fakeHeaders) Touch() error { return nil }

func (f *fakeHeaders) setRoot(height int32, root chainhash.Hash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roots[height] = root
	if height >= f.height {
		f.height = height + 1
	}
}

var _ ledgerapi.Headers = (*fakeHeaders)(nil)

func openDB(t *testing.T) *database.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := database.NewStore(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

// identityDecode keeps raw as-is and gives the transaction testTxID as its
// ID, the only transaction these tests serve.
func identityDecode(raw []byte) (*ledgertypes.Transaction, error) {
	id, err := chainhash.NewHashFromStr(testTxID)
	if err != nil {
		return nil, err
	}
	return &ledgertypes.Transaction{ID: *id, Raw: raw}, nil
}

const testTxID = "aa000000000000000000000000000000000000000000000000000000000000aa"

func TestUpdateHistoryColdStartOneConfirmedTransaction(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	net := network.NewFake()
	headers := newFakeHeaders()

	txidHash, err := chainhash.NewHashFromStr(testTxID)
	require.NoError(t, err)
	// Empty branch means the leaf equals the root (open-question decision
	// recorded in the merkle package): set the header's root to the txid
	// itself so an empty-branch proof verifies.
	headers.setRoot(5, *txidHash)

	net.Histories[testAddress] = []ledgertypes.HistoryEntry{{TxID: testTxID, Height: 5}}
	net.Transactions[testTxID] = "0102"
	net.Merkles[testTxID] = ledgerapi.MerkleProof{Branch: nil, Positions: 0}

	sync := ledgersync.NewSynchronizer(db, net, headers, identityDecode)
	events, unsubscribe := sync.OnTransaction()
	defer unsubscribe()

	require.NoError(t, sync.UpdateHistory(ctx, testAddress))

	select {
	case ev := <-events:
		require.Equal(t, testAddress, ev.Address)
		require.Equal(t, int32(5), ev.Height)
		require.True(t, ev.IsVerified)
	default:
		t.Fatal("expected one transaction event")
	}

	addr, ok, err := db.GetAddress(ctx, testAddress)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testTxID+":5:", addr.History)
}

func TestUpdateHistoryIsIdempotentOnSecondCall(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	net := network.NewFake()
	headers := newFakeHeaders()

	txidHash, err := chainhash.NewHashFromStr(testTxID)
	require.NoError(t, err)
	headers.setRoot(5, *txidHash)

	net.Histories[testAddress] = []ledgertypes.HistoryEntry{{TxID: testTxID, Height: 5}}
	net.Transactions[testTxID] = "0102"
	net.Merkles[testTxID] = ledgerapi.MerkleProof{Branch: nil, Positions: 0}

	sync := ledgersync.NewSynchronizer(db, net, headers, identityDecode)

	require.NoError(t, sync.UpdateHistory(ctx, testAddress))

	events, unsubscribe := sync.OnTransaction()
	defer unsubscribe()

	require.NoError(t, sync.UpdateHistory(ctx, testAddress))

	select {
	case <-events:
		t.Fatal("second reconciliation of unchanged history should publish no events")
	default:
	}
}

func TestUpdateHistoryUnconfirmedTransactionIsStoredUnverified(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	net := network.NewFake()
	headers := newFakeHeaders()

	net.Histories[testAddress] = []ledgertypes.HistoryEntry{{TxID: testTxID, Height: 0}}
	net.Transactions[testTxID] = "0102"

	sync := ledgersync.NewSynchronizer(db, net, headers, identityDecode)
	require.NoError(t, sync.UpdateHistory(ctx, testAddress))

	rec, ok, err := db.GetTransaction(ctx, testTxID)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, rec.IsVerified)
}
