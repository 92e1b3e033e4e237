// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgertypes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/ledgercore/ledgertypes"
)

func TestParseHistoryEmpty(t *testing.T) {
	require.Nil(t, ledgertypes.ParseHistory(""))
}

func TestParseHistoryRoundTrip(t *testing.T) {
	entries := []ledgertypes.HistoryEntry{
		{TxID: "aa", Height: 5},
		{TxID: "bb", Height: 0},
	}
	formatted := ledgertypes.FormatHistory(entries)
	require.Equal(t, "aa:5:bb:0:", formatted)

	parsed := ledgertypes.ParseHistory(formatted)
	require.Equal(t, entries, parsed)
}

func TestParseHistorySingleEntry(t *testing.T) {
	parsed := ledgertypes.ParseHistory("aa:5:")
	require.Equal(t, []ledgertypes.HistoryEntry{{TxID: "aa", Height: 5}}, parsed)
}
