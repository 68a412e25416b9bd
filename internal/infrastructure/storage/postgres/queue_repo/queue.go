// Package queue_repo provides the PostgreSQL scan delta queue.
package queue_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"scanflow/internal/core/types"
	"scanflow/internal/domain/deltaqueue"
	"scanflow/internal/infrastructure/storage/postgres"
)

const queueTable = "scan_queue"

var _ deltaqueue.Repository = (*QueueRepo)(nil)

// QueueRepo implements deltaqueue.Repository.
type QueueRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewQueueRepo creates a new queue repository.
func NewQueueRepo(txManager *postgres.TxManager) *QueueRepo {
	return &QueueRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts one entry.
func (r *QueueRepo) Append(ctx context.Context, e deltaqueue.Entry) error {
	sql, args, err := r.AppendQuery(e).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert queue entry: %w", err)
	}
	return nil
}

// AppendQuery builds the insert of e, for callers batching it with other writes.
func (r *QueueRepo) AppendQuery(e deltaqueue.Entry) squirrel.InsertBuilder {
	return r.builder.Insert(queueTable).SetMap(postgres.StructToMap(e))
}

// Sum returns the sum of all deltas of a row.
func (r *QueueRepo) Sum(ctx context.Context, documentID, rowKey string) (types.Quantity, error) {
	sql, args, err := r.sumQuery(documentID, rowKey).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var sum types.Quantity
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum queue: %w", err)
	}
	return sum, nil
}

// MarkSent flags unsent entries as sent.
func (r *QueueRepo) MarkSent(ctx context.Context, documentID string, ids []string) (int64, error) {
	sql, args, err := r.markSentQuery(documentID, ids).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("mark sent: %w", err)
	}
	return tag.RowsAffected(), nil
}

// HasUnsent reports whether the document has unsent entries.
func (r *QueueRepo) HasUnsent(ctx context.Context, documentID string) (bool, error) {
	sql, args, err := r.unsentQuery(documentID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check unsent: %w", err)
	}
	return exists, nil
}

// ListByDocument returns all entries of a document.
func (r *QueueRepo) ListByDocument(ctx context.Context, documentID string) ([]deltaqueue.Entry, error) {
	sql, args, err := r.listQuery(documentID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []deltaqueue.Entry
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return entries, nil
}

func (r *QueueRepo) sumQuery(documentID, rowKey string) squirrel.SelectBuilder {
	return r.builder.Select("COALESCE(SUM(delta), 0)::bigint").
		From(queueTable).
		Where(squirrel.Eq{"document_id": documentID, "row_key": rowKey})
}

func (r *QueueRepo) markSentQuery(documentID string, ids []string) squirrel.UpdateBuilder {
	return r.builder.Update(queueTable).
		Set("sent", true).
		Where(squirrel.Eq{"document_id": documentID, "id": ids, "sent": false})
}

func (r *QueueRepo) unsentQuery(documentID string) squirrel.SelectBuilder {
	inner := r.builder.Select("1").
		From(queueTable).
		Where(squirrel.Eq{"document_id": documentID, "sent": false})
	return r.builder.Select().Column(squirrel.Expr("EXISTS (?)", inner))
}

func (r *QueueRepo) listQuery(documentID string) squirrel.SelectBuilder {
	return r.builder.Select(postgres.Columns[deltaqueue.Entry]()...).
		From(queueTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("created_at", "id")
}
