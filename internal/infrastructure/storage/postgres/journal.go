package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"scanflow/internal/core/id"
	"scanflow/internal/domain/barcode"
	"scanflow/internal/domain/scanning"
)

const journalTable = "scan_journal"

// CompressionAlgo specifies the compression algorithm of a journal payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which payloads are compressed.
const DefaultCompressThreshold = 2 * 1024

var _ scanning.Journal = (*ScanJournal)(nil)

// JournalRecord is one stored scan decision.
type JournalRecord struct {
	ID                string          `db:"id" json:"id"`
	DocumentID        string          `db:"document_id" json:"documentId"`
	DeviceID          string          `db:"device_id" json:"deviceId"`
	Raw               string          `db:"raw" json:"raw"`
	Kind              scanning.Kind   `db:"kind" json:"status"`
	Payload           json.RawMessage `db:"payload" json:"payload,omitempty"`
	PayloadCompressed []byte          `db:"payload_compressed" json:"-"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

type journalPayload struct {
	Identity barcode.Identity `json:"identity"`
	Result   scanning.Result  `json:"result"`
}

// ScanJournal stores scan decisions in scan_journal.
type ScanJournal struct {
	txManager         *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	now               func() time.Time
}

// NewScanJournal creates a journal. threshold <= 0 selects DefaultCompressThreshold.
func NewScanJournal(txManager *TxManager, threshold int) (*ScanJournal, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}

	return &ScanJournal{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: threshold,
		now:               func() time.Time { return time.Now().UTC() },
	}, nil
}

// Record stores one decision.
func (j *ScanJournal) Record(ctx context.Context, entry scanning.JournalEntry) error {
	rec, err := j.newRecord(entry)
	if err != nil {
		return err
	}

	sql, args, err := j.insertQuery(rec).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := j.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

// History returns the latest decisions of a document, newest first.
func (j *ScanJournal) History(ctx context.Context, documentID string, limit uint64) ([]JournalRecord, error) {
	sql, args, err := j.historyQuery(documentID, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []JournalRecord
	if err := pgxscan.Select(ctx, j.txManager.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range records {
		if err := j.inflate(&records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (j *ScanJournal) newRecord(entry scanning.JournalEntry) (JournalRecord, error) {
	payload, err := json.Marshal(journalPayload{Identity: entry.Identity, Result: entry.Result})
	if err != nil {
		return JournalRecord{}, fmt.Errorf("marshal journal payload: %w", err)
	}

	rec := JournalRecord{
		ID:              id.NewKey(),
		DocumentID:      entry.DocumentID,
		DeviceID:        entry.DeviceID,
		Raw:             entry.Raw,
		Kind:            entry.Result.Kind,
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       j.now(),
	}

	if len(payload) > j.compressThreshold {
		rec.PayloadCompressed = j.encoder.EncodeAll(payload, nil)
		rec.Payload = nil
		rec.CompressionAlgo = CompressionZstd
	}
	return rec, nil
}

func (j *ScanJournal) inflate(rec *JournalRecord) error {
	if rec.CompressionAlgo != CompressionZstd || len(rec.PayloadCompressed) == 0 {
		return nil
	}
	payload, err := j.decoder.DecodeAll(rec.PayloadCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress journal %s: %w", rec.ID, err)
	}
	rec.Payload = payload
	rec.PayloadCompressed = nil
	return nil
}

func (j *ScanJournal) insertQuery(rec JournalRecord) squirrel.InsertBuilder {
	return j.builder.Insert(journalTable).SetMap(StructToMap(rec))
}

func (j *ScanJournal) historyQuery(documentID string, limit uint64) squirrel.SelectBuilder {
	if limit == 0 || limit > 500 {
		limit = 100
	}
	return j.builder.Select(Columns[JournalRecord]()...).
		From(journalTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit)
}
