// Copyright (c) 2024 The ledgercore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgertypes

import (
	"strconv"
	"strings"
)

// ParseHistory splits a stored history column into its ordered entries.
// The format is "<txid>:<height>:" repeated and terminated by a trailing
// ':' (spec.md section 6); splitting on ':' and dropping the final empty
// element makes the zero-entry case ("") unambiguous, so that trailing
// colon is load-bearing and must never be dropped by a writer.
func ParseHistory(history string) []HistoryEntry {
	if history == "" {
		return nil
	}
	parts := strings.Split(history, ":")
	parts = parts[:len(parts)-1] // drop the trailing empty element after the last ':'

	entries := make([]HistoryEntry, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		height, err := strconv.ParseInt(parts[i+1], 10, 32)
		if err != nil {
			continue
		}
		entries = append(entries, HistoryEntry{TxID: parts[i], Height: int32(height)})
	}
	return entries
}

// FormatHistory renders entries back into the "<txid>:<height>:" wire
// format, including the trailing colon.
func FormatHistory(entries []HistoryEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.TxID)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(int64(e.Height), 10))
		b.WriteByte(':')
	}
	return b.String()
}
