package dto

import (
	"scanflow/internal/core/types"
	"scanflow/internal/domain/deltaqueue"
)

// QueueSumResponse is the summed delta of one line.
type QueueSumResponse struct {
	RowKey   string         `json:"rowKey"`
	Quantity types.Quantity `json:"quantity"`
}

// UnsentResponse tells whether a document has entries to sync.
type UnsentResponse struct {
	Unsent bool `json:"unsent"`
}

// MergeResponse lists the merged queue lines of a document.
type MergeResponse struct {
	DocumentID string                  `json:"documentId"`
	Lines      []deltaqueue.MergedLine `json:"lines"`
}

// MarkSentRequest lists the entries covered by a sync.
type MarkSentRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}
