// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinselect implements the UTXO reservation gate (spec.md
// component C9): a ledger-wide exclusive lock spanning collection,
// selection and reservation, so two concurrent spend attempts can never
// double-select the same output. Candidates the database already has
// reserved are filtered out during collection, before the search runs.
package coinselect

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ledgerkit/ledgercore/chainutil"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

// p2pkhOutputSize is the canonical pay-to-pubkey-hash output size (in
// bytes) spec.md 4.5 uses to derive the dust-threshold fee added on top of
// the requested amount.
const p2pkhOutputSize = 34

// Selector runs coin selection against a set of funding accounts under a
// single exclusive reservation lock.
type Selector struct {
	db ledgerapi.Database

	// FeePerByte estimates the marginal cost, in minor units, of including
	// sizeBytes more data in the final transaction. It is used both to
	// compute each candidate's effective amount and the dust-threshold fee
	// added to the requested target.
	FeePerByte func(sizeBytes int) chainutil.Amount

	mu sync.Mutex // utxo_reservation_lock
}

// NewSelector returns a Selector backed by db, estimating fees with
// feePerByte.
func NewSelector(db ledgerapi.Database, feePerByte func(sizeBytes int) chainutil.Amount) *Selector {
	return &Selector{db: db, FeePerByte: feePerByte}
}

// ErrInsufficientFunds describes a shortfall between the requested amount
// and the spendable funds. GetSpendableUTXOs does not return it: it reports
// insufficient funds as an empty, nil-error result.
type ErrInsufficientFunds struct {
	Requested chainutil.Amount
	Available chainutil.Amount
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("coinselect: insufficient funds: requested %d, available %d", e.Requested, e.Available)
}

type candidate struct {
	utxo            ledgerapi.UnspentOutput
	effectiveAmount chainutil.Amount
}

// GetSpendableUTXOs collects every unspent output from fundingAccounts,
// runs ascending-by-effective-amount coin selection targeting amount plus
// the dust-threshold fee, and atomically reserves the chosen outputs
// before releasing the lock (spec.md 4.5). An empty, nil-error result
// means selection found nothing to reserve; funds are insufficient.
func (s *Selector) GetSpendableUTXOs(ctx context.Context, amount chainutil.Amount, fundingAccounts []ledgerapi.Account) ([]ledgertypes.Spendable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []candidate
	for _, account := range fundingAccounts {
		utxos, err := account.GetUnspentOutputs(ctx)
		if err != nil {
			return nil, fmt.Errorf("coinselect: get_unspent_outputs %s: %w", account.ID(), err)
		}
		for _, u := range utxos {
			reserved, err := s.db.IsReserved(u.OutPoint)
			if err != nil {
				return nil, fmt.Errorf("coinselect: is_reserved %s: %w", u.OutPoint, err)
			}
			if reserved {
				continue
			}

			fee := s.FeePerByte(u.Output.Size)
			candidates = append(candidates, candidate{
				utxo:            u,
				effectiveAmount: u.Output.Amount - fee,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].effectiveAmount < candidates[j].effectiveAmount
	})

	target := amount + s.FeePerByte(p2pkhOutputSize)

	var (
		selected []candidate
		total    chainutil.Amount
	)
	for _, c := range candidates {
		selected = append(selected, c)
		total += c.effectiveAmount
		if total >= target {
			break
		}
	}

	if total < target {
		insufficientFunds.Inc()
		return nil, nil
	}

	outpoints := make([]ledgertypes.OutPoint, len(selected))
	spendables := make([]ledgertypes.Spendable, len(selected))
	for i, c := range selected {
		outpoints[i] = c.utxo.OutPoint
		spendables[i] = ledgertypes.Spendable{
			OutPoint:        c.utxo.OutPoint,
			Address:         c.utxo.Address,
			Source:          c.utxo.Output,
			EffectiveAmount: c.effectiveAmount,
		}
	}

	if err := s.db.ReserveOutputs(ctx, outpoints); err != nil {
		return nil, fmt.Errorf("coinselect: reserve_outputs: %w", err)
	}

	reservedOutputs.Add(float64(len(outpoints)))
	log.Debugf("reserved %d output(s) totaling %d for target %d", len(outpoints), total, target)
	return spendables, nil
}
