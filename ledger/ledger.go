// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger is the orchestrator (spec.md component C10) tying the
// header sync loop, history synchronizer, coin selection gate, database
// and network adapters together, mirroring the lifecycle
// torba.baseledger.BaseLedger exposes: start, stop, add_account,
// update_accounts, update_account, broadcast, on_transaction, on_header.
package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/ledgerkit/ledgercore/chainutil"
	"github.com/ledgerkit/ledgercore/coinselect"
	"github.com/ledgerkit/ledgercore/database"
	"github.com/ledgerkit/ledgercore/headerstore"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgercfg"
	"github.com/ledgerkit/ledgercore/ledgersync"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

// Ledger is the engine instance for one variant (spec.md section 2,
// "<data_path>/<symbol>_<network>/" persisted state layout).
type Ledger struct {
	Params *ledgercfg.Params

	headers *headerstore.Store
	db      *database.Store
	network ledgerapi.Network

	headerSync  *ledgersync.HeaderSync
	historySync *ledgersync.Synchronizer
	selector    *coinselect.Selector

	accountsMu sync.Mutex
	accounts   map[string]ledgerapi.Account

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New constructs a Ledger for params, creating its data directory under
// dataPath/<id>/ with restrictive (0700) permissions, and opening its
// header and database stores. decode turns raw transaction bytes fetched
// from the network into the narrow Transaction shape the engine needs.
func New(params *ledgercfg.Params, dataPath string, net ledgerapi.Network, decode ledgersync.DecodeFunc) (*Ledger, error) {
	dir := filepath.Join(dataPath, params.ID())
	if err := headerstore.TouchPath(dir); err != nil {
		return nil, fmt.Errorf("ledger: create data directory %s: %w", dir, err)
	}
	if err := unix.Chmod(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ledger: chmod data directory %s: %w", dir, err)
	}

	headers, err := headerstore.New(filepath.Join(dir, "headers"))
	if err != nil {
		return nil, fmt.Errorf("ledger: open header store: %w", err)
	}

	db, err := database.NewStore(filepath.Join(dir, "blockchain.db"))
	if err != nil {
		headers.Close()
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	l := &Ledger{
		Params:      params,
		headers:     headers,
		db:          db,
		network:     net,
		headerSync:  ledgersync.NewHeaderSync(headers, net),
		historySync: ledgersync.NewSynchronizer(db, net, headers, decode),
		selector:    coinselect.NewSelector(db, params.FeePerByte),
		accounts:    make(map[string]ledgerapi.Account),
		stopCh:      make(chan struct{}),
	}
	return l, nil
}

// Start brings the ledger up: opens the database, connects the network
// adapter, catches headers up to the remote tip, subscribes to the push
// header stream, and begins consuming it in the background.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.headers.Touch(); err != nil {
		return fmt.Errorf("ledger: touch headers: %w", err)
	}
	if err := l.db.Start(ctx); err != nil {
		return fmt.Errorf("ledger: start database: %w", err)
	}
	if err := l.network.Start(ctx); err != nil {
		return fmt.Errorf("ledger: start network: %w", err)
	}

	select {
	case <-l.network.Connected():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := l.headerSync.UpdateHeaders(ctx); err != nil {
		return fmt.Errorf("ledger: initial header catch-up: %w", err)
	}
	if err := l.network.SubscribeHeaders(ctx); err != nil {
		return fmt.Errorf("ledger: subscribe_headers: %w", err)
	}

	l.wg.Add(1)
	go l.consumeHeaderPushes(ctx)

	log.Infof("ledger %s started at height %d", l.Params.ID(), l.headers.Height())
	return nil
}

// Stop awaits the network adapter's shutdown, then the database's, per
// spec.md 5's cancellation policy (callers stop rather than cancel start).
func (l *Ledger) Stop(ctx context.Context) error {
	close(l.stopCh)
	l.wg.Wait()

	if err := l.network.Stop(ctx); err != nil {
		return fmt.Errorf("ledger: stop network: %w", err)
	}
	if err := l.db.Stop(ctx); err != nil {
		return fmt.Errorf("ledger: stop database: %w", err)
	}
	return nil
}

func (l *Ledger) consumeHeaderPushes(ctx context.Context) {
	defer l.wg.Done()

	pushes := l.network.HeaderNotifications()
	for {
		select {
		case <-l.stopCh:
			return
		case batch, ok := <-pushes:
			if !ok {
				return
			}
			for _, push := range batch {
				if err := l.headerSync.ProcessHeader(ctx, push); err != nil {
					log.Errorf("process_header at %d: %v", push.Height, err)
				}
			}
		}
	}
}

// AddAccount registers account under its ID for UpdateAccounts and
// PrivateKeyForAddress. Coin selection does not consult registered accounts;
// GetSpendableUTXOs takes its funding accounts as an argument.
func (l *Ledger) AddAccount(account ledgerapi.Account) {
	l.accountsMu.Lock()
	defer l.accountsMu.Unlock()
	l.accounts[account.ID()] = account
}

// UpdateAccounts reconciles every registered account in parallel (spec.md
// 4.6), using an errgroup in place of the source's deferred-list fan-out.
func (l *Ledger) UpdateAccounts(ctx context.Context) error {
	l.accountsMu.Lock()
	accounts := make([]ledgerapi.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		accounts = append(accounts, a)
	}
	l.accountsMu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			return l.UpdateAccount(gctx, account)
		})
	}
	return g.Wait()
}

// UpdateAccount performs the two-phase reconciliation spec.md 4.6
// describes: gap-fill & restore, then subscribe.
func (l *Ledger) UpdateAccount(ctx context.Context, account ledgerapi.Account) error {
	for {
		newAddresses, err := account.EnsureAddressGap(ctx)
		if err != nil {
			return fmt.Errorf("ledger: ensure_address_gap %s: %w", account.ID(), err)
		}
		if len(newAddresses) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, address := range newAddresses {
			address := address
			g.Go(func() error {
				return l.historySync.UpdateHistory(gctx, address)
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("ledger: restore addresses for %s: %w", account.ID(), err)
		}
	}

	addresses, err := account.GetAddresses(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: get_addresses %s: %w", account.ID(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, address := range addresses {
		address := address
		g.Go(func() error {
			return l.subscribeAndReconcile(gctx, address)
		})
	}
	return g.Wait()
}

func (l *Ledger) subscribeAndReconcile(ctx context.Context, address string) error {
	remoteStatus, err := l.network.SubscribeAddress(ctx, address)
	if err != nil {
		return fmt.Errorf("subscribe_address %s: %w", address, err)
	}

	localStatus, err := l.GetLocalStatus(ctx, address)
	if err != nil {
		return fmt.Errorf("get_local_status %s: %w", address, err)
	}
	if localStatus == remoteStatus {
		return nil
	}

	return l.historySync.UpdateHistory(ctx, address)
}

// GetLocalStatus returns hex(SHA256(history_string)) for address, the
// exact digest the server computes (spec.md 4.6).
func (l *Ledger) GetLocalStatus(ctx context.Context, address string) (string, error) {
	record, ok, err := l.db.GetAddress(ctx, address)
	if err != nil {
		return "", fmt.Errorf("get_address %s: %w", address, err)
	}
	if !ok {
		record = ledgertypes.AddressRecord{}
	}
	digest := chainutil.Sha256([]byte(record.History))
	return hex.EncodeToString(digest[:]), nil
}

// Broadcast forwards rawHex to the network and returns whatever it
// returns, typically the accepted txid.
func (l *Ledger) Broadcast(ctx context.Context, rawHex string) (string, error) {
	return l.network.Broadcast(ctx, rawHex)
}

// Transaction returns the stored row for txid, the convenience accessor
// the original exposes as get_transaction.
func (l *Ledger) Transaction(ctx context.Context, txid string) (ledgertypes.TransactionRecord, bool, error) {
	return l.db.GetTransaction(ctx, txid)
}

// PrivateKeyForAddress resolves address to its owning account and chain
// position and returns its private key, the convenience accessor the
// original exposes as get_private_key_for_address.
func (l *Ledger) PrivateKeyForAddress(ctx context.Context, address string) ([]byte, error) {
	record, ok, err := l.db.GetAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get_address %s: %w", address, err)
	}
	if !ok {
		return nil, fmt.Errorf("ledger: unknown address %s", address)
	}

	l.accountsMu.Lock()
	account, ok := l.accounts[record.AccountID]
	l.accountsMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("ledger: unknown account %s for address %s", record.AccountID, address)
	}

	return account.GetPrivateKey(record.Chain, record.Position)
}

// GetSpendableUTXOs reserves and returns enough unspent outputs from
// fundingAccounts to cover amount (spec.md 4.5).
func (l *Ledger) GetSpendableUTXOs(ctx context.Context, amount chainutil.Amount, fundingAccounts []ledgerapi.Account) ([]ledgertypes.Spendable, error) {
	return l.selector.GetSpendableUTXOs(ctx, amount, fundingAccounts)
}

// OnTransaction returns the stream of transaction reconciliation events.
func (l *Ledger) OnTransaction() (<-chan ledgertypes.TransactionEvent, func()) {
	return l.historySync.OnTransaction()
}

// OnHeader returns the stream of newly reached header heights.
func (l *Ledger) OnHeader() (<-chan int32, func()) {
	return l.headerSync.OnHeader()
}
