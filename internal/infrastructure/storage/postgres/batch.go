package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// Batch collects statements to send in a single round trip.
type Batch struct {
	queries []BatchQuery
}

// Add builds q and appends it to the batch.
func (b *Batch) Add(q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build batch query: %w", err)
	}
	b.queries = append(b.queries, BatchQuery{SQL: sql, Args: args})
	return nil
}

// Len returns the number of queued statements.
func (b *Batch) Len() int { return len(b.queries) }

// Queries returns the queued statements.
func (b *Batch) Queries() []BatchQuery { return b.queries }

// ExecuteBatch sends the batch on the transaction in ctx.
func (m *TxManager) ExecuteBatch(ctx context.Context, b *Batch) error {
	tx := m.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("ExecuteBatch requires transaction context")
	}
	if b.Len() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, q := range b.queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range b.queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch query %d failed: %w", i, err)
		}
	}
	return nil
}
