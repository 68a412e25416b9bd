package scanning

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scanflow/internal/core/apperror"
	appctx "scanflow/internal/core/context"
	"scanflow/internal/domain/barcode"
	"scanflow/pkg/logger"
)

var tracer = otel.Tracer("scanflow/scanning")

// ScanRequest is one scan event from a device.
type ScanRequest struct {
	DocumentID string
	Raw        string
	// Location is required by the address-storage worker.
	Location *Location
}

// Worker handles the scans of one document editing session.
// Its policy is fixed for its lifetime; scans must not overlap.
type Worker struct {
	engine  *Engine
	policy  Policy
	lookup  Lookup
	sink    Sink
	journal Journal
}

// NewWorker creates a worker. journal may be nil.
func NewWorker(engine *Engine, policy Policy, lookup Lookup, sink Sink, journal Journal) *Worker {
	return &Worker{
		engine:  engine,
		policy:  policy,
		lookup:  lookup,
		sink:    sink,
		journal: journal,
	}
}

// Policy returns the controls the worker enforces.
func (w *Worker) Policy() Policy { return w.policy }

// Scan decodes, reconciles and persists one scan.
// Business outcomes are returned in Result; the error is non-nil only for
// lookup or sink failures, in which case nothing was written.
func (w *Worker) Scan(ctx context.Context, req ScanRequest) (Result, error) {
	ctx, span := tracer.Start(ctx, "scanning.Scan",
		trace.WithAttributes(
			attribute.String("document_id", req.DocumentID),
			attribute.Bool("addressed", w.engine.Capabilities().Addressed),
		))
	defer span.End()

	if w.engine.Capabilities().Addressed && !validLocation(req.Location) {
		return Result{}, apperror.NewCellRequired().WithDetail("document_id", req.DocumentID)
	}

	deviceID := appctx.GetDeviceID(ctx)
	ident := barcode.Decode(req.Raw)
	in := Input{
		DocumentID: req.DocumentID,
		DeviceID:   deviceID,
		Identity:   ident,
		Location:   req.Location,
		Policy:     w.policy,
	}

	if ident.Valid() {
		snap, err := w.lookup.Fetch(ctx, LookupKey{
			DocumentID: req.DocumentID,
			DeviceID:   deviceID,
			Identity:   ident,
			Location:   req.Location,
		})
		switch {
		case err == nil:
			in.Snapshot = snap
		case apperror.IsNotFound(err):
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
			return Result{}, apperror.NewLookupFailed(err).WithDetail("document_id", req.DocumentID)
		}
	} else {
		logger.Debug(ctx, "scan not decoded", "raw", req.Raw, "reason", ident.Error)
	}

	result := w.engine.Evaluate(in)
	span.SetAttributes(attribute.String("scan.kind", string(result.Kind)))

	if !result.Staged.Empty() {
		rowKey, err := w.sink.Apply(ctx, req.DocumentID, result.Staged)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "sink failed")
			logger.Error(ctx, "scan not saved",
				"document_id", req.DocumentID,
				"row_key", result.RowKey,
				"error", err,
			)
			return Result{}, apperror.NewSinkFailed(err).WithDetail("document_id", req.DocumentID)
		}
		if rowKey != "" && rowKey != result.RowKey {
			logger.Debug(ctx, "scan merged into existing line", "staged_row_key", result.RowKey, "row_key", rowKey)
			result.RowKey = rowKey
			result.Staged = result.Staged.WithRowKey(rowKey)
		}
	}

	w.record(ctx, JournalEntry{
		DocumentID: req.DocumentID,
		DeviceID:   deviceID,
		Raw:        req.Raw,
		Identity:   ident,
		Result:     result,
	})

	logger.Info(ctx, "scan evaluated",
		"document_id", req.DocumentID,
		"kind", result.Kind,
		"row_key", result.RowKey,
	)
	return result, nil
}

func (w *Worker) record(ctx context.Context, entry JournalEntry) {
	if w.journal == nil {
		return
	}
	if err := w.journal.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "scan journal write failed", "document_id", entry.DocumentID, "error", err)
	}
}

func validLocation(loc *Location) bool {
	return loc != nil && loc.CellID != "" && loc.TableType.Valid()
}
