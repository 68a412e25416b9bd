package deltaqueue

import (
	"context"
	"fmt"

	"scanflow/internal/core/apperror"
	"scanflow/internal/core/id"
	"scanflow/internal/core/tx"
	"scanflow/internal/core/types"
	"scanflow/pkg/logger"
)

// Merger answers queue questions for the synchronization process.
type Merger struct {
	repo      Repository
	txManager tx.Manager
}

// NewMerger creates a queue merger.
func NewMerger(repo Repository, txManager tx.Manager) *Merger {
	return &Merger{
		repo:      repo,
		txManager: txManager,
	}
}

// Append records one entry, assigning an id when it has none.
func (m *Merger) Append(ctx context.Context, e Entry) error {
	if e.DocumentID == "" || e.RowKey == "" {
		return apperror.NewValidation("queue entry requires document and row key")
	}
	if e.ID == "" {
		e.ID = id.NewKey()
	}
	if err := m.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append queue entry: %w", err)
	}
	return nil
}

// Sum returns the total delta of a row across every entry.
func (m *Merger) Sum(ctx context.Context, documentID, rowKey string) (types.Quantity, error) {
	if rowKey == "" {
		return 0, apperror.NewValidation("rowKey is required")
	}
	sum, err := m.repo.Sum(ctx, documentID, rowKey)
	if err != nil {
		return 0, fmt.Errorf("sum queue: %w", err)
	}
	return sum, nil
}

// MarkSent flags entries as sent. Sums are unaffected.
func (m *Merger) MarkSent(ctx context.Context, documentID string, ids []string) error {
	if len(ids) == 0 {
		return apperror.NewValidation("at least one entry id is required")
	}

	var n int64
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = m.repo.MarkSent(ctx, documentID, ids)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	logger.Info(ctx, "queue entries sent",
		"document_id", documentID,
		"requested", len(ids),
		"updated", n,
	)
	return nil
}

// Unsent reports whether the document has entries still to sync.
func (m *Merger) Unsent(ctx context.Context, documentID string) (bool, error) {
	ok, err := m.repo.HasUnsent(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("check unsent: %w", err)
	}
	return ok, nil
}

// Merge returns per-line totals of the document queue.
func (m *Merger) Merge(ctx context.Context, documentID string) ([]MergedLine, error) {
	entries, err := m.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return MergeEntries(entries), nil
}
