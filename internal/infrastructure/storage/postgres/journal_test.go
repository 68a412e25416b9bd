package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanflow/internal/domain/barcode"
	"scanflow/internal/domain/scanning"
)

func journalEntry(raw string) scanning.JournalEntry {
	return scanning.JournalEntry{
		DocumentID: "doc-1",
		DeviceID:   "tsd-1",
		Raw:        raw,
		Identity:   barcode.Decode(raw),
		Result:     scanning.Result{Kind: scanning.KindSuccessBarcode, RowKey: "row-1"},
	}
}

func TestScanJournal_SmallPayloadStaysPlain(t *testing.T) {
	j, err := NewScanJournal(nil, 0)
	require.NoError(t, err)

	rec, err := j.newRecord(journalEntry("2000000058177"))
	require.NoError(t, err)

	assert.Equal(t, CompressionNone, rec.CompressionAlgo)
	assert.Nil(t, rec.PayloadCompressed)
	assert.Contains(t, string(rec.Payload), `"status":"success_barcode"`)
	assert.Equal(t, scanning.KindSuccessBarcode, rec.Kind)
	assert.NotEmpty(t, rec.ID)
}

func TestScanJournal_LargePayloadRoundTrip(t *testing.T) {
	j, err := NewScanJournal(nil, 64)
	require.NoError(t, err)

	raw := "0104601234567893" + barcode.GroupSeparator + "21" + strings.Repeat("A", 200)
	rec, err := j.newRecord(journalEntry(raw))
	require.NoError(t, err)

	require.Equal(t, CompressionZstd, rec.CompressionAlgo)
	assert.Nil(t, rec.Payload)
	assert.NotEmpty(t, rec.PayloadCompressed)

	require.NoError(t, j.inflate(&rec))
	assert.Nil(t, rec.PayloadCompressed)
	assert.Contains(t, string(rec.Payload), strings.Repeat("A", 200))
}

func TestScanJournal_Queries(t *testing.T) {
	j, err := NewScanJournal(nil, 0)
	require.NoError(t, err)

	sql, args, err := j.historyQuery("doc-1", 0).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT id, document_id, device_id, raw, kind, payload, payload_compressed, compression_algo, created_at FROM scan_journal WHERE document_id = $1 ORDER BY created_at DESC, id DESC"), sql)
	assert.Equal(t, []any{"doc-1"}, args)

	rec, err := j.newRecord(journalEntry("2000000058177"))
	require.NoError(t, err)
	sql, args, err = j.insertQuery(rec).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO scan_journal (compression_algo,created_at,device_id,document_id,id,kind,payload,payload_compressed,raw) VALUES ("), sql)
	assert.Len(t, args, 9)
}
