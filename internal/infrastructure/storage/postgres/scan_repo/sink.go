package scan_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	appctx "scanflow/internal/core/context"
	"scanflow/internal/core/id"
	"scanflow/internal/domain/deltaqueue"
	"scanflow/internal/domain/scanning"
	"scanflow/internal/infrastructure/storage/postgres"
)

var _ scanning.Sink = (*MutationSink)(nil)

// lineItemColumns identify the one line an item has in a document.
const lineItemColumns = "document_id, good_id, property_id, series_id, unit_id, cell_id, table_type"

// QueueInserter builds the insert of a queue entry.
type QueueInserter interface {
	AppendQuery(e deltaqueue.Entry) squirrel.InsertBuilder
}

// MutationSink applies staged scan writes in one transaction and one round trip.
type MutationSink struct {
	txManager *postgres.TxManager
	queue     QueueInserter
	builder   squirrel.StatementBuilderType
}

// NewMutationSink creates a new sink.
func NewMutationSink(txManager *postgres.TxManager, queue QueueInserter) *MutationSink {
	return &MutationSink{
		txManager: txManager,
		queue:     queue,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Apply writes m and returns the row key the line was written to.
// A new line whose item already got a line from another device is merged
// into that row; the mark, device total and queue entry follow it.
// Nothing is written if any statement fails.
func (s *MutationSink) Apply(ctx context.Context, documentID string, m scanning.Mutations) (string, error) {
	if m.Empty() {
		return "", nil
	}

	deviceID := appctx.GetDeviceID(ctx)
	var rowKey string
	if m.Line != nil {
		rowKey = m.Line.RowKey
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if m.Line != nil && m.Line.Insert {
			key, err := s.insertLine(ctx, documentID, m.Line)
			if err != nil {
				return err
			}
			if key != rowKey {
				m = m.WithRowKey(key)
				rowKey = key
			}
		}

		batch, err := s.plan(documentID, deviceID, m)
		if err != nil {
			return err
		}
		if batch.Len() == 0 {
			return nil
		}
		return s.txManager.ExecuteBatch(ctx, batch)
	})
	if err != nil {
		return "", err
	}
	return rowKey, nil
}

func (s *MutationSink) insertLine(ctx context.Context, documentID string, line *scanning.LineMutation) (string, error) {
	sql, args, err := s.insertLineQuery(documentID, line).ToSql()
	if err != nil {
		return "", fmt.Errorf("build line insert: %w", err)
	}

	var key string
	if err := s.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&key); err != nil {
		return "", fmt.Errorf("insert line: %w", err)
	}
	return key, nil
}

// plan builds the statements that follow the line insert: line update,
// device total, mark and queue entry.
func (s *MutationSink) plan(documentID, deviceID string, m scanning.Mutations) (*postgres.Batch, error) {
	batch := &postgres.Batch{}

	if line := m.Line; line != nil {
		if !line.Insert {
			if err := batch.Add(s.updateLineQuery(documentID, line)); err != nil {
				return nil, err
			}
		}
		if deviceID != "" {
			if err := batch.Add(s.deviceQuery(documentID, deviceID, line)); err != nil {
				return nil, err
			}
		}
	}

	if mark := m.Mark; mark != nil {
		if err := batch.Add(s.markQuery(documentID, mark)); err != nil {
			return nil, err
		}
	}

	if e := m.Queue; e != nil {
		entry := deltaqueue.Entry{
			ID:         e.ID,
			DocumentID: documentID,
			RowKey:     e.RowKey,
			DeviceID:   e.DeviceID,
			Delta:      e.Delta,
			CreatedAt:  e.CreatedAt,
		}
		if err := batch.Add(s.queue.AppendQuery(entry)); err != nil {
			return nil, err
		}
	}

	return batch, nil
}

// insertLineQuery creates the line of an item, or adds to the line another
// device created for the same item since the lookup.
func (s *MutationSink) insertLineQuery(documentID string, line *scanning.LineMutation) squirrel.InsertBuilder {
	return s.builder.Insert(linesTable).
		Columns("document_id", "row_key", "good_id", "property_id", "series_id", "unit_id",
			"qtty", "qtty_plan", "cell_id", "table_type").
		Values(documentID, line.RowKey, line.GoodID, line.PropertyID, line.SeriesID, line.UnitID,
			line.Quantity, 0, line.CellID, string(line.TableType)).
		Suffix("ON CONFLICT (" + lineItemColumns + ") DO UPDATE SET qtty = " + linesTable + ".qtty + EXCLUDED.qtty RETURNING row_key")
}

func (s *MutationSink) updateLineQuery(documentID string, line *scanning.LineMutation) squirrel.UpdateBuilder {
	q := s.builder.Update(linesTable)
	if line.Mode == scanning.WriteIncrement {
		q = q.Set("qtty", squirrel.Expr("qtty + ?", line.Delta))
	} else {
		q = q.Set("qtty", line.Quantity)
	}
	return q.Where(squirrel.Eq{"document_id": documentID, "row_key": line.RowKey})
}

func (s *MutationSink) deviceQuery(documentID, deviceID string, line *scanning.LineMutation) squirrel.Sqlizer {
	return s.builder.Insert(lineDevicesTable).
		Columns("document_id", "row_key", "device_id", "qtty").
		Values(documentID, line.RowKey, deviceID, line.DeviceQtty).
		Suffix("ON CONFLICT (document_id, row_key, device_id) DO UPDATE SET qtty = EXCLUDED.qtty")
}

func (s *MutationSink) markQuery(documentID string, mark *scanning.MarkMutation) squirrel.Sqlizer {
	if mark.IsNew() {
		return s.builder.Insert(marksTable).
			Columns("id", "document_id", "row_key", "gtin", "serial", "approved").
			Values(id.NewKey(), documentID, mark.RowKey, mark.GTIN, mark.Serial, mark.Approved)
	}
	return s.builder.Update(marksTable).
		Set("approved", mark.Approved).
		Set("row_key", mark.RowKey).
		Where(squirrel.Eq{"document_id": documentID, "id": mark.ID})
}
