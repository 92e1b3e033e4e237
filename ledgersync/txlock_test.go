// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgersync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxLockTableSerializesSameTxID(t *testing.T) {
	table := newTxLockTable()

	var mu sync.Mutex
	order := make([]int, 0, 2)

	releaseA := table.acquire("t1")
	done := make(chan struct{})
	go func() {
		releaseB := table.acquire("t1")
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		releaseB()
		close(done)
	}()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	releaseA()
	<-done

	require.Equal(t, []int{1, 2}, order)
}

func TestTxLockTableRemovesEntryWhenUncontended(t *testing.T) {
	table := newTxLockTable()

	release := table.acquire("t1")
	release()

	table.mu.Lock()
	_, exists := table.entries["t1"]
	table.mu.Unlock()
	require.False(t, exists)
}

func TestTxLockTableReleaseIsIdempotent(t *testing.T) {
	table := newTxLockTable()

	release := table.acquire("t1")
	release()
	require.NotPanics(t, release)
}
