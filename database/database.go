// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database is the durable implementation of ledgerapi.Database
// (spec.md component C4), backed by go.etcd.io/bbolt. Bucket layout:
// transactions, addresses, reservations — one logical region per caller
// (header sync never touches this package; history sync and coin
// selection each own a bucket), grounded in the bucket-per-concern shape
// the pack's p2pool-go bolt store takes for its share chain. The store is
// opened with NewStore(path) and closed with Stop.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

var (
	transactionsBucket = []byte("transactions")
	addressesBucket    = []byte("addresses")
	reservationsBucket = []byte("reservations")
)

// ErrNotFound names a missing row. No Store method returns it:
// GetTransaction and GetAddress report a missing row as ok=false.
var ErrNotFound = errors.New("database: not found")

// Store is a bbolt-backed implementation of ledgerapi.Database.
type Store struct {
	mu sync.Mutex
	db *bbolt.DB
}

var _ ledgerapi.Database = (*Store)(nil)

type transactionRow struct {
	Raw        []byte `json:"raw"`
	Height     int32  `json:"height"`
	IsVerified bool   `json:"is_verified"`
}

type addressRow struct {
	AccountID string `json:"account_id"`
	Chain     uint32 `json:"chain"`
	Position  uint32 `json:"position"`
	History   string `json:"history"`
}

// NewStore opens (creating if necessary) a bbolt-backed store at path.
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{transactionsBucket, addressesBucket, reservationsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("database: create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Start is a no-op; NewStore already opened the file. It exists to satisfy
// ledgerapi.Database's lifecycle contract.
func (s *Store) Start(ctx context.Context) error {
	return nil
}

// Stop closes the underlying bbolt handle.
func (s *Store) Stop(ctx context.Context) error {
	return s.db.Close()
}

// GetTransaction returns the stored row for txid, or ok=false if absent.
func (s *Store) GetTransaction(ctx context.Context, txid string) (ledgertypes.TransactionRecord, bool, error) {
	var row transactionRow
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(transactionsBucket).Get([]byte(txid))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &row)
	})
	if err != nil {
		return ledgertypes.TransactionRecord{}, false, fmt.Errorf("database: get transaction %s: %w", txid, err)
	}
	if !found {
		return ledgertypes.TransactionRecord{}, false, nil
	}
	return ledgertypes.TransactionRecord{Raw: row.Raw, Height: row.Height, IsVerified: row.IsVerified}, true, nil
}

// GetAddress returns the stored row for address, or ok=false if absent.
func (s *Store) GetAddress(ctx context.Context, address string) (ledgertypes.AddressRecord, bool, error) {
	var row addressRow
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(addressesBucket).Get([]byte(address))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &row)
	})
	if err != nil {
		return ledgertypes.AddressRecord{}, false, fmt.Errorf("database: get address %s: %w", address, err)
	}
	if !found {
		return ledgertypes.AddressRecord{}, false, nil
	}
	return ledgertypes.AddressRecord{
		Address:   address,
		AccountID: row.AccountID,
		Chain:     row.Chain,
		Position:  row.Position,
		History:   row.History,
	}, true, nil
}

// SaveTransactionIO persists tx per mode and rewrites address's history
// column to historyString in the same transaction, so a crash can never
// observe the history ahead of the transaction row it names (spec.md 4.4
// step 4c).
func (s *Store) SaveTransactionIO(ctx context.Context, mode ledgertypes.SaveMode, tx *ledgertypes.Transaction,
	height int32, isVerified bool, address string, hash160 [20]byte, historyString string) error {

	return s.db.Update(func(btx *bbolt.Tx) error {
		if mode == ledgertypes.SaveInsert || mode == ledgertypes.SaveUpdate {
			row := transactionRow{Raw: tx.Raw, Height: height, IsVerified: isVerified}
			encoded, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode transaction row: %w", err)
			}
			if err := btx.Bucket(transactionsBucket).Put([]byte(tx.ID.String()), encoded); err != nil {
				return fmt.Errorf("put transaction row: %w", err)
			}
		}

		bucket := btx.Bucket(addressesBucket)
		var existing addressRow
		if raw := bucket.Get([]byte(address)); raw != nil {
			if err := json.Unmarshal(raw, &existing); err != nil {
				return fmt.Errorf("decode existing address row: %w", err)
			}
		}
		existing.History = historyString

		encoded, err := json.Marshal(existing)
		if err != nil {
			return fmt.Errorf("encode address row: %w", err)
		}
		if err := bucket.Put([]byte(address), encoded); err != nil {
			return fmt.Errorf("put address row: %w", err)
		}
		return nil
	})
}

// ReserveOutputs marks outpoints as reserved so a concurrent coin selection
// will not also choose them.
func (s *Store) ReserveOutputs(ctx context.Context, outpoints []ledgertypes.OutPoint) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		bucket := btx.Bucket(reservationsBucket)
		for _, op := range outpoints {
			if err := bucket.Put([]byte(op.String()), []byte{1}); err != nil {
				return fmt.Errorf("reserve %s: %w", op, err)
			}
		}
		return nil
	})
}

// ReleaseOutputs undoes ReserveOutputs.
func (s *Store) ReleaseOutputs(ctx context.Context, outpoints []ledgertypes.OutPoint) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		bucket := btx.Bucket(reservationsBucket)
		for _, op := range outpoints {
			if err := bucket.Delete([]byte(op.String())); err != nil {
				return fmt.Errorf("release %s: %w", op, err)
			}
		}
		return nil
	})
}

// IsReserved reports whether outpoint is currently reserved, used by coin
// selection to filter candidates before running its search.
func (s *Store) IsReserved(outpoint ledgertypes.OutPoint) (bool, error) {
	reserved := false
	err := s.db.View(func(btx *bbolt.Tx) error {
		reserved = btx.Bucket(reservationsBucket).Get([]byte(outpoint.String())) != nil
		return nil
	})
	return reserved, err
}
