// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import "encoding/json"

// request is the JSON-RPC envelope sent to the indexing server. ID is a
// google/uuid string so responses can be demultiplexed on the single
// websocket connection regardless of arrival order.
type request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// response is the JSON-RPC envelope the indexing server replies with, or
// pushes unsolicited as a subscription notification (in which case ID is
// empty and Method names the subscription).
type response struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

const (
	methodHeadersSubscribe    = "blockchain.headers.subscribe"
	methodAddressSubscribe    = "blockchain.address.subscribe"
	methodGetHeaders          = "blockchain.block.headers"
	methodGetHistory          = "blockchain.address.get_history"
	methodGetTransaction      = "blockchain.transaction.get"
	methodGetMerkle           = "blockchain.transaction.get_merkle"
	methodBroadcast           = "blockchain.transaction.broadcast"
)

type headerNotificationWire struct {
	Height int32  `json:"height"`
	Hex    string `json:"hex"`
}

type historyEntryWire struct {
	TxHash string `json:"tx_hash"`
	Height int32  `json:"height"`
}

type getHeadersResultWire struct {
	Count int    `json:"count"`
	Hex   string `json:"hex"`
}

type getMerkleResultWire struct {
	Merkle []string `json:"merkle"`
	Pos    uint64   `json:"pos"`
}

type addressSubscribeNotificationWire struct {
	Address string `json:"address"`
	Status  string `json:"status"`
}
