// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgersync

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ledgerkit/ledgercore/chainhash"
	"github.com/ledgerkit/ledgercore/chainutil"
	"github.com/ledgerkit/ledgercore/eventstream"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
	"github.com/ledgerkit/ledgercore/merkle"
)

// DecodeFunc turns raw wire-encoded transaction bytes into the narrow
// Transaction shape ledgersync needs. Decoding the wire format itself is
// out of scope for this package; the caller supplies it, typically backed
// by a Transaction adapter for the ledger's actual transaction encoding.
type DecodeFunc func(raw []byte) (*ledgertypes.Transaction, error)

// Synchronizer reconciles one address's remote history against local
// state (spec.md component C8), invoked on account restore, incremental
// address-status pushes, and subscription-initial status mismatches.
type Synchronizer struct {
	db      ledgerapi.Database
	network ledgerapi.Network
	headers ledgerapi.Headers
	decode  DecodeFunc

	txLocks *txLockTable

	onTransaction *eventstream.Stream[ledgertypes.TransactionEvent]
}

// NewSynchronizer returns a Synchronizer wired to db, network and headers,
// using decode to turn raw transaction bytes fetched from the network into
// ledgertypes.Transaction values.
func NewSynchronizer(db ledgerapi.Database, network ledgerapi.Network, headers ledgerapi.Headers, decode DecodeFunc) *Synchronizer {
	return &Synchronizer{
		db:            db,
		network:       network,
		headers:       headers,
		decode:        decode,
		txLocks:       newTxLockTable(),
		onTransaction: eventstream.New[ledgertypes.TransactionEvent](eventstream.DefaultCapacity, func(dropped ledgertypes.TransactionEvent) {
			log.Warnf("transaction event stream dropped an event for %s for a slow subscriber", dropped.Address)
		}),
	}
}

// OnTransaction returns the stream of transaction reconciliation events.
func (s *Synchronizer) OnTransaction() (<-chan ledgertypes.TransactionEvent, func()) {
	return s.onTransaction.Subscribe()
}

// UpdateHistory reconciles address's remote history against local state
// (spec.md 4.4). The address's hash160 is decoded fresh here via
// chainutil.AddressToHash160, matching the original's inline
// self.address_to_hash160(address) call in its per-address reconciliation
// loop; callers never hold a stale hash160 across addresses.
func (s *Synchronizer) UpdateHistory(ctx context.Context, address string) error {
	hash160, err := chainutil.AddressToHash160(address)
	if err != nil {
		return fmt.Errorf("ledgersync: address_to_hash160 %s: %w", address, err)
	}

	remote, err := s.network.GetHistory(ctx, address)
	if err != nil {
		return fmt.Errorf("ledgersync: get_history %s: %w", address, err)
	}

	record, ok, err := s.db.GetAddress(ctx, address)
	if err != nil {
		return fmt.Errorf("ledgersync: get_address %s: %w", address, err)
	}
	var local []ledgertypes.HistoryEntry
	if ok {
		local = ledgertypes.ParseHistory(record.History)
	}

	synced := make([]ledgertypes.HistoryEntry, 0, len(remote))
	for i, entry := range remote {
		if i < len(local) && local[i] == entry {
			synced = append(synced, entry)
			continue
		}

		synced = append(synced, entry)
		if err := s.reconcileOne(ctx, address, hash160, entry, synced); err != nil {
			return err
		}
	}

	return nil
}

// reconcileOne performs step 4 of spec.md 4.4 for one remote history entry
// that did not already match the local history at its position. synced is
// the cumulative synced_history including this entry, used to compute the
// history string persisted alongside it.
func (s *Synchronizer) reconcileOne(ctx context.Context, address string, hash160 [20]byte, entry ledgertypes.HistoryEntry, synced []ledgertypes.HistoryEntry) error {
	release := s.txLocks.acquire(entry.TxID)
	defer release()

	rec, found, err := s.db.GetTransaction(ctx, entry.TxID)
	if err != nil {
		return fmt.Errorf("ledgersync: get_transaction %s: %w", entry.TxID, err)
	}

	var tx *ledgertypes.Transaction
	saveMode := ledgertypes.SaveNone
	isVerified := false

	if !found {
		rawHex, err := s.network.GetTransaction(ctx, entry.TxID)
		if err != nil {
			return fmt.Errorf("ledgersync: fetch transaction %s: %w", entry.TxID, err)
		}
		raw, err := hex.DecodeString(rawHex)
		if err != nil {
			return fmt.Errorf("ledgersync: decode transaction hex %s: %w", entry.TxID, err)
		}
		tx, err = s.decode(raw)
		if err != nil {
			return fmt.Errorf("ledgersync: decode transaction %s: %w", entry.TxID, err)
		}
		saveMode = ledgertypes.SaveInsert
	} else {
		txidHash, err := chainhash.NewHashFromStr(entry.TxID)
		if err != nil {
			return fmt.Errorf("ledgersync: parse txid %s: %w", entry.TxID, err)
		}
		tx = &ledgertypes.Transaction{ID: *txidHash, Raw: rec.Raw}
		isVerified = rec.IsVerified
	}

	if entry.Height > 0 && !isVerified {
		if entry.Height <= s.headers.Height() {
			verified, err := s.verify(ctx, entry.TxID, entry.Height)
			if err != nil {
				log.Warnf("merkle verification failed for %s at %d: %v", entry.TxID, entry.Height, err)
			} else {
				isVerified = verified
			}
			if found {
				saveMode = ledgertypes.SaveUpdate
			}
		}
	}

	historyString := ledgertypes.FormatHistory(synced)
	if err := s.db.SaveTransactionIO(ctx, saveMode, tx, entry.Height, isVerified, address, hash160, historyString); err != nil {
		log.Errorf("save_transaction_io failed for %s: %v", entry.TxID, err)
		return fmt.Errorf("ledgersync: save_transaction_io %s: %w", entry.TxID, err)
	}

	s.onTransaction.Publish(ledgertypes.TransactionEvent{
		Address:    address,
		Tx:         tx,
		Height:     entry.Height,
		IsVerified: isVerified,
	})
	return nil
}

// verify fetches the Merkle branch for txid at height and checks it
// against the header's merkle_root.
func (s *Synchronizer) verify(ctx context.Context, txid string, height int32) (bool, error) {
	proof, err := s.network.GetMerkle(ctx, txid, height)
	if err != nil {
		return false, fmt.Errorf("get_merkle: %w", err)
	}

	root, err := s.headers.MerkleRootAt(height)
	if err != nil {
		return false, fmt.Errorf("merkle_root_at %d: %w", height, err)
	}

	branch := make([]merkle.Branch, len(proof.Branch))
	for i, b := range proof.Branch {
		branch[i] = merkle.Branch(b)
	}

	return merkle.Verify(txid, branch, proof.Positions, root.String())
}
