// Package scan_repo provides the PostgreSQL document line lookup, mutation
// sink and scan settings used by the scanning service.
package scan_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"scanflow/internal/core/apperror"
	"scanflow/internal/domain/barcode"
	"scanflow/internal/domain/scanning"
	"scanflow/internal/infrastructure/storage/postgres"
)

const (
	barcodesTable    = "scan_barcodes"
	goodsTable       = "scan_goods"
	linesTable       = "doc_lines"
	lineDevicesTable = "doc_line_devices"
	marksTable       = "doc_marks"
	settingsTable    = "doc_scan_settings"
)

var _ scanning.Lookup = (*LineLookup)(nil)

// LineLookup implements scanning.Lookup.
type LineLookup struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLineLookup creates a new line lookup.
func NewLineLookup(txManager *postgres.TxManager) *LineLookup {
	return &LineLookup{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Fetch returns the snapshot of the first matching item, existing lines first.
func (r *LineLookup) Fetch(ctx context.Context, key scanning.LookupKey) (*scanning.LineSnapshot, error) {
	codes := key.Identity.LookupCodes()
	if len(codes) == 0 {
		return nil, apperror.NewNotFound("barcode", key.Identity.Raw)
	}

	sql, args, err := r.fetchQuery(key, codes).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var snap scanning.LineSnapshot
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &snap, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("barcode", key.Identity.GTIN)
		}
		return nil, fmt.Errorf("fetch line: %w", err)
	}
	return &snap, nil
}

func (r *LineLookup) fetchQuery(key scanning.LookupKey, codes []string) squirrel.SelectBuilder {
	lineJoin := linesTable + " l ON l.document_id = ? AND l.good_id = b.good_id" +
		" AND l.property_id = b.property_id AND l.series_id = b.series_id AND l.unit_id = b.unit_id"
	lineArgs := []any{key.DocumentID}
	if key.Location != nil {
		lineJoin += " AND l.cell_id = ? AND l.table_type = ?"
		lineArgs = append(lineArgs, key.Location.CellID, string(key.Location.TableType))
	} else {
		// Cell lines belong to address storage.
		lineJoin += " AND l.cell_id = ''"
	}

	q := r.builder.Select(
		"b.good_id", "b.property_id", "b.series_id", "b.unit_id", "b.ratio",
		"COALESCE(l.row_key, '') AS row_key",
		"COALESCE(d.qtty, 0) AS device_qtty",
		"COALESCE(l.qtty, 0) AS overall_qtty",
		"COALESCE(l.qtty_plan, 0) AS qtty_plan",
		"g.use_mark", "g.use_series",
	).
		From(barcodesTable + " b").
		Join(goodsTable + " g ON g.good_id = b.good_id").
		LeftJoin(lineJoin, lineArgs...).
		LeftJoin(lineDevicesTable+" d ON d.document_id = l.document_id AND d.row_key = l.row_key AND d.device_id = ?", key.DeviceID)

	// Any GS1 code can be a mark, with or without a serial.
	if key.Identity.Scheme == barcode.SchemeGS1 {
		q = q.Columns("COALESCE(m.id, '') AS mark_id", "COALESCE(m.approved, '') = '1' AS mark_approved").
			LeftJoin(marksTable+" m ON m.document_id = ? AND m.gtin = ? AND m.serial = ?",
				key.DocumentID, key.Identity.GTIN, key.Identity.Serial)
	} else {
		q = q.Columns("'' AS mark_id", "false AS mark_approved")
	}

	return q.Where(squirrel.Eq{"b.barcode": codes}).
		OrderBy("l.row_key", "b.barcode").
		Limit(1)
}
