// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	flog "github.com/ledgerkit/ledgercore/log"
)

const (
	defaultDataPath        = "ledgercored_data"
	defaultLogLevel        = "info"
	defaultAddressGapLimit = 20
)

// config defines the configuration options for ledgercored, loaded via
// go-flags exactly as the teacher's cmd/flokicoind-cli/config.go loads its
// own flag set.
type config struct {
	DataPath        string `short:"d" long:"datapath" description:"Directory to store headers and the transaction database"`
	Symbol          string `long:"symbol" description:"Ledger variant symbol, e.g. VEL" required:"true"`
	Network         string `long:"network" description:"Ledger variant network name, e.g. mainnet" required:"true"`
	NetworkAddr     string `long:"networkaddr" description:"Address of the remote indexing server" required:"true"`
	FeePerByte      int64  `long:"feeperbyte" description:"Override the variant's default fee per byte"`
	AddressGapLimit int    `long:"addressgaplimit" description:"Unused address gap to maintain per account" default:"20"`
	Proxy           string `long:"proxy" description:"Optional SOCKS5 proxy address for the network adapter"`
	LogLevel        string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`
}

// loadConfig parses command-line flags into a config, matching the
// teacher's loadConfig() shape: parse, fill defaults, return.
func loadConfig() (*config, error) {
	cfg := config{
		DataPath:        defaultDataPath,
		LogLevel:        defaultLogLevel,
		AddressGapLimit: defaultAddressGapLimit,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.DataPath == "" {
		cfg.DataPath = defaultDataPath
	}
	if _, err := os.Stat(cfg.DataPath); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.DataPath, 0o700); err != nil {
			return nil, fmt.Errorf("create data path %s: %w", cfg.DataPath, err)
		}
	}

	return &cfg, nil
}

// logLevel parses cfg.LogLevel into a flog.Level, defaulting to Info on an
// unrecognized value.
func (cfg *config) logLevel() flog.Level {
	level, ok := flog.LevelFromString(cfg.LogLevel)
	if !ok {
		return flog.LevelInfo
	}
	return level
}
