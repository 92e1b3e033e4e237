// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgersync implements the header sync loop (spec.md component
// C7) and the per-address history synchronizer (C8), the two engine
// pieces that keep local state converging on what the remote indexing
// server reports.
package ledgersync

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledgerkit/ledgercore/eventstream"
	"github.com/ledgerkit/ledgercore/ledgerapi"
)

// maxHeadersPerRequest bounds a single bulk catch-up request, matching the
// server-side page size spec.md 4.3 assumes.
const maxHeadersPerRequest = 2000

// SyncState is the header sync loop's current phase.
type SyncState int

const (
	StateIdle SyncState = iota
	StateCatchingUp
	StateFollowingTip
)

// HeaderSync drives the Idle -> CatchingUp -> FollowingTip state machine
// described in spec.md 4.3, guarded by a single exclusive lock so bulk
// catch-up and push-header handling never interleave writes.
type HeaderSync struct {
	headers ledgerapi.Headers
	network ledgerapi.Network

	mu    sync.Mutex // header_processing_lock
	state SyncState

	onHeader *eventstream.Stream[int32]
}

// NewHeaderSync returns a HeaderSync driving headers from network.
func NewHeaderSync(headers ledgerapi.Headers, network ledgerapi.Network) *HeaderSync {
	return &HeaderSync{
		headers:  headers,
		network:  network,
		onHeader: eventstream.New[int32](eventstream.DefaultCapacity, func(dropped int32) {
			log.Warnf("header event stream dropped height %d for a slow subscriber", dropped)
		}),
	}
}

// OnHeader returns the stream of newly reached heights.
func (h *HeaderSync) OnHeader() (<-chan int32, func()) {
	return h.onHeader.Subscribe()
}

// State reports the loop's current phase, for diagnostics.
func (h *HeaderSync) State() SyncState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// UpdateHeaders performs the bulk catch-up loop: request up to
// maxHeadersPerRequest headers starting at the store's current height, and
// keep going until the server reports zero, which is the only termination
// signal this loop needs (spec.md 4.3).
func (h *HeaderSync) UpdateHeaders(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updateHeadersLocked(ctx)
}

func (h *HeaderSync) updateHeadersLocked(ctx context.Context) error {
	h.state = StateCatchingUp
	defer func() { h.state = StateFollowingTip }()

	for {
		height := h.headers.Height()
		count, raw, err := h.network.GetHeaders(ctx, height, maxHeadersPerRequest)
		if err != nil {
			return fmt.Errorf("ledgersync: get_headers at %d: %w", height, err)
		}
		if count <= 0 {
			return nil
		}

		if err := h.headers.Connect(ctx, height, raw); err != nil {
			return fmt.Errorf("ledgersync: connect at %d: %w", height, err)
		}

		newHeight := h.headers.Height()
		log.Debugf("caught up to height %d", newHeight)
		h.onHeader.Publish(newHeight)
	}
}

// ProcessHeader handles one pushed header notification (spec.md 4.3):
// appends directly if it extends the tip by exactly one, falls back to a
// bulk catch-up if it skips ahead, and silently ignores a stale push.
func (h *HeaderSync) ProcessHeader(ctx context.Context, push ledgerapi.HeaderNotification) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.headers.Height()
	switch {
	case push.Height == current:
		if err := h.headers.Connect(ctx, push.Height, push.Raw); err != nil {
			return fmt.Errorf("ledgersync: connect pushed header at %d: %w", push.Height, err)
		}
		newHeight := h.headers.Height()
		h.onHeader.Publish(newHeight)
		return nil
	case push.Height > current:
		return h.updateHeadersLocked(ctx)
	default:
		log.Debugf("ignoring stale header push at %d, local height is %d", push.Height, current)
		return nil
	}
}
