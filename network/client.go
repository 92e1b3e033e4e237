// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network is the default implementation of ledgerapi.Network
// (spec.md component C5): a JSON-RPC-over-WebSocket client to the remote
// indexing server, using github.com/gorilla/websocket and, optionally, a
// SOCKS5 proxy via github.com/flokiorg/go-socks for privacy-preserving
// connections. Framing and on-wire transaction/header encoding are the
// server's concern; this package only ever moves opaque hex strings and
// JSON envelopes.
package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	socks "github.com/flokiorg/go-socks"

	"github.com/ledgerkit/ledgercore/eventstream"
	"github.com/ledgerkit/ledgercore/ledgerapi"
	"github.com/ledgerkit/ledgercore/ledgertypes"
)

// ErrNotConnected is returned by requests issued before Start has
// established a connection.
var ErrNotConnected = errors.New("network: not connected")

// ErrClosed is returned when the client is stopped while a request is
// outstanding.
var ErrClosed = errors.New("network: client closed")

// Config configures a Client.
type Config struct {
	// URL is the wss:// or ws:// endpoint of the indexing server.
	URL string

	// ProxyAddr, if non-empty, routes the websocket dial through a SOCKS5
	// proxy at this address (spec.md 2.5).
	ProxyAddr string

	// DialTimeout bounds the initial connection attempt.
	DialTimeout time.Duration
}

// Client is a JSON-RPC-over-WebSocket implementation of ledgerapi.Network.
type Client struct {
	cfg Config

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan *response
	closed  bool

	connectedOnce sync.Once
	connectedCh   chan struct{}

	headerStream *eventstream.Stream[[]ledgerapi.HeaderNotification]
	statusStream *eventstream.Stream[ledgerapi.StatusNotification]

	wg sync.WaitGroup
}

var _ ledgerapi.Network = (*Client)(nil)

// New returns a Client configured to dial cfg.URL once Start is called.
func New(cfg Config) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	return &Client{
		cfg:         cfg,
		pending:     make(map[string]chan *response),
		connectedCh: make(chan struct{}),
		headerStream: eventstream.New[[]ledgerapi.HeaderNotification](eventstream.DefaultCapacity, func(dropped []ledgerapi.HeaderNotification) {
			log.Warnf("header notification stream dropped a batch of %d headers for a slow subscriber", len(dropped))
		}),
		statusStream: eventstream.New[ledgerapi.StatusNotification](eventstream.DefaultCapacity, func(dropped ledgerapi.StatusNotification) {
			log.Warnf("status notification stream dropped status for %s for a slow subscriber", dropped.Address)
		}),
	}
}

// Start dials the indexing server and begins the read loop.
func (c *Client) Start(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	if c.cfg.ProxyAddr != "" {
		proxy := &socks.Proxy{Addr: c.cfg.ProxyAddr}
		dialer.NetDial = func(network, addr string) (net.Conn, error) {
			return proxy.Dial(network, addr)
		}
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("network: dial %s: %w", c.cfg.URL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.connectedOnce.Do(func() { close(c.connectedCh) })

	c.wg.Add(1)
	go c.readLoop()

	log.Infof("connected to %s", c.cfg.URL)
	return nil
}

// Stop closes the connection and waits for the read loop to exit.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.wg.Wait()
	return nil
}

// IsConnected reports whether the underlying websocket connection is open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.closed
}

// Connected resolves once after the first successful connection.
func (c *Client) Connected() <-chan struct{} {
	return c.connectedCh
}

// HeaderNotifications returns the push stream of new chain tips.
func (c *Client) HeaderNotifications() <-chan []ledgerapi.HeaderNotification {
	ch, _ := c.headerStream.Subscribe()
	return ch
}

// StatusNotifications returns the push stream of address status changes.
func (c *Client) StatusNotifications() <-chan ledgerapi.StatusNotification {
	ch, _ := c.statusStream.Subscribe()
	return ch
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			log.Warnf("read loop exiting: %v", err)
			c.failPending(err)
			return
		}

		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			log.Warnf("malformed message: %v", err)
			continue
		}

		if resp.ID != "" {
			c.deliver(&resp)
			continue
		}

		switch resp.Method {
		case methodHeadersSubscribe:
			var wire []headerNotificationWire
			if err := json.Unmarshal(resp.Params, &wire); err != nil {
				log.Warnf("malformed header notification: %v", err)
				continue
			}
			notifications := make([]ledgerapi.HeaderNotification, 0, len(wire))
			for _, w := range wire {
				raw, err := hex.DecodeString(w.Hex)
				if err != nil {
					continue
				}
				notifications = append(notifications, ledgerapi.HeaderNotification{Height: w.Height, Raw: raw})
			}
			c.headerStream.Publish(notifications)
		case methodAddressSubscribe:
			var wire addressSubscribeNotificationWire
			if err := json.Unmarshal(resp.Params, &wire); err != nil {
				log.Warnf("malformed status notification: %v", err)
				continue
			}
			c.statusStream.Publish(ledgerapi.StatusNotification{Address: wire.Address, Status: wire.Status})
		}
	}
}

func (c *Client) deliver(resp *response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()
	if ok {
		ch <- resp
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		ch <- &response{Error: &rpcError{Message: err.Error()}}
		delete(c.pending, id)
	}
}

// call issues method with params and blocks until a response arrives, ctx
// is cancelled, or the client is stopped.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}

	id := uuid.NewString()
	ch := make(chan *response, 1)
	c.pending[id] = ch
	conn := c.conn
	c.mu.Unlock()

	encodedParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("network: encode params: %w", err)
	}

	req := request{ID: id, Method: method, Params: encodedParams}
	if err := conn.WriteJSON(req); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("network: write %s: %w", method, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("network: %s: %w", method, resp.Error)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// GetHeaders requests up to maxCount headers starting at startHeight.
func (c *Client) GetHeaders(ctx context.Context, startHeight int32, maxCount int) (int, []byte, error) {
	result, err := c.call(ctx, methodGetHeaders, map[string]any{"start_height": startHeight, "count": maxCount})
	if err != nil {
		return 0, nil, err
	}
	var wire getHeadersResultWire
	if err := json.Unmarshal(result, &wire); err != nil {
		return 0, nil, fmt.Errorf("network: decode get_headers result: %w", err)
	}
	raw, err := hex.DecodeString(wire.Hex)
	if err != nil {
		return 0, nil, fmt.Errorf("network: decode header hex: %w", err)
	}
	return wire.Count, raw, nil
}

// GetHistory requests the remote ordered (tx_hash, height) history for
// address.
func (c *Client) GetHistory(ctx context.Context, address string) ([]ledgertypes.HistoryEntry, error) {
	result, err := c.call(ctx, methodGetHistory, map[string]any{"address": address})
	if err != nil {
		return nil, err
	}
	var wire []historyEntryWire
	if err := json.Unmarshal(result, &wire); err != nil {
		return nil, fmt.Errorf("network: decode get_history result: %w", err)
	}
	entries := make([]ledgertypes.HistoryEntry, len(wire))
	for i, w := range wire {
		entries[i] = ledgertypes.HistoryEntry{TxID: w.TxHash, Height: w.Height}
	}
	return entries, nil
}

// GetTransaction requests the raw hex-encoded bytes of txid.
func (c *Client) GetTransaction(ctx context.Context, txid string) (string, error) {
	result, err := c.call(ctx, methodGetTransaction, map[string]any{"tx_hash": txid})
	if err != nil {
		return "", err
	}
	var rawHex string
	if err := json.Unmarshal(result, &rawHex); err != nil {
		return "", fmt.Errorf("network: decode get_transaction result: %w", err)
	}
	return rawHex, nil
}

// GetMerkle requests the Merkle branch proving txid's inclusion at height.
func (c *Client) GetMerkle(ctx context.Context, txid string, height int32) (ledgerapi.MerkleProof, error) {
	result, err := c.call(ctx, methodGetMerkle, map[string]any{"tx_hash": txid, "height": height})
	if err != nil {
		return ledgerapi.MerkleProof{}, err
	}
	var wire getMerkleResultWire
	if err := json.Unmarshal(result, &wire); err != nil {
		return ledgerapi.MerkleProof{}, fmt.Errorf("network: decode get_merkle result: %w", err)
	}
	return ledgerapi.MerkleProof{Branch: wire.Merkle, Positions: wire.Pos}, nil
}

// SubscribeHeaders subscribes to the header push stream.
func (c *Client) SubscribeHeaders(ctx context.Context) error {
	_, err := c.call(ctx, methodHeadersSubscribe, map[string]any{})
	return err
}

// SubscribeAddress subscribes to address's status push stream, returning
// its current status digest.
func (c *Client) SubscribeAddress(ctx context.Context, address string) (string, error) {
	result, err := c.call(ctx, methodAddressSubscribe, map[string]any{"address": address})
	if err != nil {
		return "", err
	}
	var status string
	if err := json.Unmarshal(result, &status); err != nil {
		return "", fmt.Errorf("network: decode subscribe_address result: %w", err)
	}
	return status, nil
}

// Broadcast forwards rawHex to the network and returns the server's result,
// typically the accepted txid.
func (c *Client) Broadcast(ctx context.Context, rawHex string) (string, error) {
	result, err := c.call(ctx, methodBroadcast, map[string]any{"raw_tx": rawHex})
	if err != nil {
		return "", err
	}
	var txid string
	if err := json.Unmarshal(result, &txid); err != nil {
		return "", fmt.Errorf("network: decode broadcast result: %w", err)
	}
	return txid, nil
}
