// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgercfg

import (
	"fmt"
	"sync"
)

// registry is the process-wide symbol_network -> *Params map (spec.md
// invariant 4). The teacher's metaclass-driven self-registration has no
// equivalent at Go's compile time, so per spec.md's DESIGN NOTES this is an
// explicit Register call made from each variant's init(), not reflection
// over declared types.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Params)
)

// Register adds params to the registry under its ID. It panics on a
// duplicate ID: per spec.md invariant 4 and section 3's lifecycle note,
// colliding on registration is a programming error, not a runtime
// condition callers should handle.
func Register(params *Params) {
	registryMu.Lock()
	defer registryMu.Unlock()

	id := params.ID()
	if _, exists := registry[id]; exists {
		panic(fmt.Sprintf("ledgercfg: ledger with id %q already registered", id))
	}
	registry[id] = params
}

// Lookup returns the registered variant for id, and whether it was found.
func Lookup(id string) (*Params, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[id]
	return p, ok
}

// All returns every registered variant, for CLI listing and diagnostics.
func All() []*Params {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*Params, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	return out
}
