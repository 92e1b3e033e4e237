// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"context"
	"sync"

	"github.com/ledgerkit/ledgercore/eventstream"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

// Fake is an in-memory implementation of ledgerapi.Network driven entirely
// by test setup, used in place of Client wherever a test needs a
// deterministic indexing server without a websocket connection.
type Fake struct {
	mu sync.Mutex

	connected     bool
	connectedCh   chan struct{}
	connectedOnce sync.Once

	Headers      map[int32][]byte
	HeaderCount  int32
	Histories    map[string][]ledgertypes.HistoryEntry
	Transactions map[string]string
	Merkles      map[string]ledgerapi.MerkleProof
	Statuses     map[string]string
	Broadcasts   []string
	BroadcastTxID string

	headerStream *eventstream.Stream[[]ledgerapi.HeaderNotification]
	statusStream *eventstream.Stream[ledgerapi.StatusNotification]
}

var _ ledgerapi.Network = (*Fake)(nil)

// NewFake returns an empty Fake ready for a test to populate.
func NewFake() *Fake {
	return &Fake{
		connectedCh:  make(chan struct{}),
		Headers:      make(map[int32][]byte),
		Histories:    make(map[string][]ledgertypes.HistoryEntry),
		Transactions: make(map[string]string),
		Merkles:      make(map[string]ledgerapi.MerkleProof),
		Statuses:     make(map[string]string),
		headerStream: eventstream.New[[]ledgerapi.HeaderNotification](eventstream.DefaultCapacity, func(dropped []ledgerapi.HeaderNotification) {
			log.Warnf("header notification stream dropped a batch of %d headers for a slow subscriber", len(dropped))
		}),
		statusStream: eventstream.New[ledgerapi.StatusNotification](eventstream.DefaultCapacity, func(dropped ledgerapi.StatusNotification) {
			log.Warnf("status notification stream dropped status for %s for a slow subscriber", dropped.Address)
		}),
	}
}

func (f *Fake) Start(ctx context.Context) error {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	f.connectedOnce.Do(func() { close(f.connectedCh) })
	return nil
}

func (f *Fake) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *Fake) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *Fake) Connected() <-chan struct{} {
	return f.connectedCh
}

func (f *Fake) HeaderNotifications() <-chan []ledgerapi.HeaderNotification {
	ch, _ := f.headerStream.Subscribe()
	return ch
}

func (f *Fake) StatusNotifications() <-chan ledgerapi.StatusNotification {
	ch, _ := f.statusStream.Subscribe()
	return ch
}

// PushHeaders publishes a synthetic header notification for tests driving
// the push path.
func (f *Fake) PushHeaders(notifications []ledgerapi.HeaderNotification) {
	f.headerStream.Publish(notifications)
}

// PushStatus publishes a synthetic status notification.
func (f *Fake) PushStatus(address, status string) {
	f.statusStream.Publish(ledgerapi.StatusNotification{Address: address, Status: status})
}

func (f *Fake) GetHeaders(ctx context.Context, startHeight int32, maxCount int) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var raw []byte
	count := 0
	for h := startHeight; h < f.HeaderCount && count < maxCount; h++ {
		record, ok := f.Headers[h]
		if !ok {
			break
		}
		raw = append(raw, record...)
		count++
	}
	return count, raw, nil
}

func (f *Fake) GetHistory(ctx context.Context, address string) ([]ledgertypes.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Histories[address], nil
}

func (f *Fake) GetTransaction(ctx context.Context, txid string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Transactions[txid], nil
}

func (f *Fake) GetMerkle(ctx context.Context, txid string, height int32) (ledgerapi.MerkleProof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Merkles[txid], nil
}

func (f *Fake) SubscribeHeaders(ctx context.Context) error {
	return nil
}

func (f *Fake) SubscribeAddress(ctx context.Context, address string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Statuses[address], nil
}

func (f *Fake) Broadcast(ctx context.Context, rawHex string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Broadcasts = append(f.Broadcasts, rawHex)
	return f.BroadcastTxID, nil
}
