package deltaqueue

import (
	"context"

	"scanflow/internal/core/types"
)

// Repository stores queue entries. Entries are never deleted.
type Repository interface {
	// Append inserts one entry.
	Append(ctx context.Context, e Entry) error

	// Sum returns the sum of all deltas of a row, sent or not.
	Sum(ctx context.Context, documentID, rowKey string) (types.Quantity, error)

	// MarkSent flags the given entries of a document as sent and returns
	// how many rows changed. Already sent entries are left as they are.
	MarkSent(ctx context.Context, documentID string, ids []string) (int64, error)

	// HasUnsent reports whether any entry of the document is not sent.
	HasUnsent(ctx context.Context, documentID string) (bool, error)

	// ListByDocument returns all entries of a document ordered by creation time.
	ListByDocument(ctx context.Context, documentID string) ([]Entry, error)
}
