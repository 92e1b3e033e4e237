// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command ledgercored is the daemon entrypoint wiring config, logging,
// ledgercfg and ledger together, shaped like the teacher's flokicoind.go
// main flow: loadConfig -> init logging -> construct core type -> interrupt
// listener -> start/stop.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jrick/logrotate"

	"github.com/ledgerkit/ledgercore/ledger"
	"github.com/ledgerkit/ledgercore/ledgercfg"
	flog "github.com/ledgerkit/ledgercore/log"
	"github.com/ledgerkit/ledgercore/network"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rotator, err := logrotate.NewRotator(cfg.DataPath + "/ledgercored.log")
	if err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	defer rotator.Close()

	backend := flog.NewBackend(rotator)
	logger := backend.Logger("LCRD")
	logger.SetLevel(cfg.logLevel())

	ledgerLog := backend.Logger("LDGR")
	ledgerLog.SetLevel(cfg.logLevel())
	ledger.UseLogger(ledgerLog)

	id := strings.ToLower(cfg.Symbol) + "_" + strings.ToLower(cfg.Network)
	params, ok := ledgercfg.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown ledger variant %s", id)
	}
	if cfg.FeePerByte > 0 {
		params.DefaultFeePerByte = cfg.FeePerByte
	}

	logger.Infof("starting ledgercored for %s", params)

	interrupt := interruptListener()

	net := network.New(network.Config{URL: cfg.NetworkAddr, ProxyAddr: cfg.Proxy})

	l, err := ledger.New(params, cfg.DataPath, net, nil)
	if err != nil {
		return fmt.Errorf("construct ledger: %w", err)
	}

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		return fmt.Errorf("start ledger: %w", err)
	}

	<-interrupt

	logger.Info("shutdown requested, stopping")
	if err := l.Stop(ctx); err != nil {
		return fmt.Errorf("stop ledger: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
