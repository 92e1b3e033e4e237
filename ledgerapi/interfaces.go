// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgerapi declares the external-collaborator interfaces the
// engine consumes (spec.md section 6): Headers, Database, Network and
// Account. Concrete implementations live in sibling packages (headerstore,
// database, network) and are wired together by cmd/ledgercored; engine
// packages (ledgersync, coinselect, ledger) depend only on these
// interfaces so they can be driven by fakes in tests.
package ledgerapi

import (
	"context"

	"github.com/ledgerkit/ledgercore/chainhash"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

// Headers is the append-only header log (spec.md component C3, out of
// scope for block-format parsing internals — only the append/height
// contract is assumed here).
type Headers interface {
	// Height returns the number of headers currently stored; header
	// heights are dense (spec.md invariant 5), so a store holding heights
	// [0, Height()-1] answers MerkleRootAt for exactly that range.
	Height() int32

	// Connect appends raw, the wire-encoded concatenation of one or more
	// fixed-width header records starting at startHeight.
	Connect(ctx context.Context, startHeight int32, raw []byte) error

	// MerkleRootAt returns the merkle_root of the header at height.
	MerkleRootAt(height int32) (chainhash.Hash, error)

	// Touch ensures the backing header file/store exists, called once
	// during Ledger.Start before the first catch-up.
	Touch() error
}

// Database is the durable store of transactions, addresses, histories and
// UTXO reservations (spec.md component C4).
type Database interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// GetTransaction returns the stored row for txid, or ok=false if no
	// row exists (spec.md section 6).
	GetTransaction(ctx context.Context, txid string) (rec ledgertypes.TransactionRecord, ok bool, err error)

	// GetAddress returns the stored row for address, or ok=false if the
	// address has never been seen.
	GetAddress(ctx context.Context, address string) (rec ledgertypes.AddressRecord, ok bool, err error)

	// SaveTransactionIO persists tx under mode, updating the owning
	// address's history column to historyString in the same call (spec.md
	// 4.4 step 4c): the write must be atomic from the caller's point of
	// view so a crash never leaves the history ahead of the transaction
	// row it names.
	SaveTransactionIO(ctx context.Context, mode ledgertypes.SaveMode, tx *ledgertypes.Transaction,
		height int32, isVerified bool, address string, hash160 [20]byte, historyString string) error

	// ReserveOutputs marks outpoints as reserved so a second concurrent
	// coin selection will not also choose them (spec.md invariant 3).
	ReserveOutputs(ctx context.Context, outpoints []ledgertypes.OutPoint) error

	// ReleaseOutputs undoes ReserveOutputs, e.g. when a spend is abandoned.
	ReleaseOutputs(ctx context.Context, outpoints []ledgertypes.OutPoint) error

	// IsReserved reports whether outpoint is currently reserved, consulted
	// by coin selection before a candidate is added to a selection so two
	// concurrent selections can never choose the same output (spec.md
	// invariant 3).
	IsReserved(outpoint ledgertypes.OutPoint) (bool, error)
}

// HeaderNotification is one entry of the on_header push stream (spec.md
// section 6): a height/raw-header pair the server believes extends the
// chain.
type HeaderNotification struct {
	Height int32
	Raw    []byte
}

// StatusNotification is one entry of the on_status push stream: an
// address's new status digest.
type StatusNotification struct {
	Address string
	Status  string
}

// MerkleProof is the response shape of Network.GetMerkle.
type MerkleProof struct {
	Branch    []string
	Positions uint64
}

// Network is the wire-protocol client to the indexing server (spec.md
// component C5, out of scope for framing/encoding internals — only this
// request/response and subscription-stream contract is assumed here).
type Network interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsConnected() bool

	// Connected resolves once after the first successful connection, the
	// Go equivalent of the source's on_connected.first one-shot.
	Connected() <-chan struct{}

	HeaderNotifications() <-chan []HeaderNotification
	StatusNotifications() <-chan StatusNotification

	GetHeaders(ctx context.Context, startHeight int32, maxCount int) (count int, raw []byte, err error)
	GetHistory(ctx context.Context, address string) ([]ledgertypes.HistoryEntry, error)
	GetTransaction(ctx context.Context, txid string) (rawHex string, err error)
	GetMerkle(ctx context.Context, txid string, height int32) (MerkleProof, error)

	SubscribeHeaders(ctx context.Context) error
	SubscribeAddress(ctx context.Context, address string) (statusHex string, err error)

	Broadcast(ctx context.Context, rawHex string) (result string, err error)
}

// Account is the narrow slice of key-tree management the engine consumes
// (spec.md component, out of scope for key derivation internals).
type Account interface {
	ID() string

	// EnsureAddressGap synthesizes fresh addresses until the unused
	// address gap is satisfied, returning only the newly created ones.
	EnsureAddressGap(ctx context.Context) ([]string, error)

	// GetAddresses returns every known address. When maxUsedTimes is
	// non-nil, only addresses used at most that many times are returned
	// (spec.md 4.6 passes maxUsedTimes=0 during restore).
	GetAddresses(ctx context.Context, maxUsedTimes *int) ([]string, error)

	GetUnspentOutputs(ctx context.Context) ([]UnspentOutput, error)
	GetPrivateKey(chain, position uint32) ([]byte, error)
}

// UnspentOutput is one UTXO an Account reports as spendable, paired with
// the transaction output it came from.
type UnspentOutput struct {
	OutPoint ledgertypes.OutPoint
	Output   ledgertypes.InputOutput
	Address  string
}
