// Package deltaqueue provides the append-only per-document scan delta queue.
// Devices append one entry per accepted scan; synchronization reads the
// entries, sums them per row key and flags what it covered as sent.
package deltaqueue

import (
	"sort"
	"time"

	"scanflow/internal/core/types"
)

// Entry is one scan contribution to a document line.
type Entry struct {
	ID         string         `db:"id" json:"id"`
	DocumentID string         `db:"document_id" json:"documentId"`
	RowKey     string         `db:"row_key" json:"rowKey"`
	DeviceID   string         `db:"device_id" json:"deviceId,omitempty"`
	Delta      types.Quantity `db:"delta" json:"delta"`
	Sent       bool           `db:"sent" json:"sent"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// MergedLine is the queue view of one document line.
type MergedLine struct {
	RowKey string `json:"rowKey"`
	// Total sums every entry, sent or not.
	Total types.Quantity `json:"total"`
	// Pending sums the entries not yet sent.
	Pending types.Quantity `json:"pending"`
	// PendingIDs are the unsent entries a sync of this line covers.
	PendingIDs []string `json:"pendingIds,omitempty"`
}

// MergeEntries folds entries into per-line totals ordered by row key.
// The result does not depend on the order of entries.
func MergeEntries(entries []Entry) []MergedLine {
	byRow := make(map[string]*MergedLine)
	for _, e := range entries {
		line, ok := byRow[e.RowKey]
		if !ok {
			line = &MergedLine{RowKey: e.RowKey}
			byRow[e.RowKey] = line
		}
		line.Total += e.Delta
		if !e.Sent {
			line.Pending += e.Delta
			line.PendingIDs = append(line.PendingIDs, e.ID)
		}
	}

	merged := make([]MergedLine, 0, len(byRow))
	for _, line := range byRow {
		sort.Strings(line.PendingIDs)
		merged = append(merged, *line)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].RowKey < merged[j].RowKey })
	return merged
}
