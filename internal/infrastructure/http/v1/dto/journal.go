package dto

import (
	"scanflow/internal/infrastructure/storage/postgres"
)

// JournalResponse lists recent scan decisions of a document.
type JournalResponse struct {
	DocumentID string                   `json:"documentId"`
	Items      []postgres.JournalRecord `json:"items"`
}
