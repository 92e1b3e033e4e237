// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
)

// interruptListener returns a channel closed once a SIGINT/SIGTERM arrives,
// the daemon's cue to begin a graceful stop. A second signal forces an
// immediate exit, the same double-signal escape hatch the teacher's daemon
// offers.
func interruptListener() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, interruptSignals...)

		<-sigCh
		close(ch)

		<-sigCh
		os.Exit(1)
	}()
	return ch
}
