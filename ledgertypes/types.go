// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgertypes holds the data shapes shared across the engine and
// its external collaborators (spec.md section 3), kept dependency-free of
// any one subsystem so headerstore, database, network and ledger can all
// import it without a cycle.
package ledgertypes

import (
	"fmt"

	"github.com/ledgerkit/ledgercore/chainhash"
	"github.com/ledgerkit/ledgercore/chainutil"
)

// OutPoint identifies a UTXO by its originating transaction and output
// index.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// String renders the outpoint as "<txid>:<index>" in display byte order.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash.String(), o.Index)
}

// InputOutput is one input or output of a Transaction. Only outputs carry a
// meaningful Amount; spec.md 3 notes inputs only have a Size.
type InputOutput struct {
	Size   int
	Amount chainutil.Amount
}

// Transaction is the narrow slice of a decoded transaction the engine
// needs: identifier, raw bytes, the fee-relevant base size, and its
// inputs/outputs. Byte-level encoding/decoding is the Transaction adapter's
// job (out of scope per spec.md section 1); ledgercore only ever receives
// already-decoded values through this shape.
type Transaction struct {
	ID        chainhash.Hash
	Raw       []byte
	BaseSize  int
	Inputs    []InputOutput
	Outputs   []InputOutput
}

// Output returns the output at index, and whether it exists.
func (t *Transaction) Output(index uint32) (InputOutput, bool) {
	if int(index) >= len(t.Outputs) {
		return InputOutput{}, false
	}
	return t.Outputs[index], true
}

// AddressRecord is the database's view of one address: its owning account,
// derivation chain/position, and concatenated history string (spec.md 3,
// 6).
type AddressRecord struct {
	Address   string
	AccountID string
	Chain     uint32
	Position  uint32
	History   string
}

// TransactionRecord is the database's view of one stored transaction
// (spec.md 3, 6).
type TransactionRecord struct {
	Raw        []byte
	Height     int32
	IsVerified bool
}

// SaveMode selects how save_transaction_io should persist a transaction row
// (spec.md 4.4 step 4c).
type SaveMode int

const (
	// SaveNone means the row already exists and is unchanged; only the
	// owning address's history column needs rewriting.
	SaveNone SaveMode = iota
	SaveInsert
	SaveUpdate
)

// Spendable is a UTXO coin selection chose to spend, annotated back to its
// source InputOutput (spec.md 3).
type Spendable struct {
	OutPoint        OutPoint
	Address         string
	Source          InputOutput
	EffectiveAmount chainutil.Amount
}

// TransactionEvent is published on the transaction stream exactly once per
// (address, txid) reconciliation (spec.md 3, 6).
type TransactionEvent struct {
	Address    string
	Tx         *Transaction
	Height     int32
	IsVerified bool
}

// HistoryEntry is one (txid, height) pair as the remote server or the local
// history column represents it.
type HistoryEntry struct {
	TxID   string
	Height int32
}
