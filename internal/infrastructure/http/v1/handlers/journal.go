package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"scanflow/internal/infrastructure/http/v1/dto"
	"scanflow/internal/infrastructure/storage/postgres"
)

// JournalReader returns recorded scan decisions.
type JournalReader interface {
	History(ctx context.Context, documentID string, limit uint64) ([]postgres.JournalRecord, error)
}

// JournalHandler exposes the scan journal.
type JournalHandler struct {
	*BaseHandler
	journal JournalReader
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(base *BaseHandler, journal JournalReader) *JournalHandler {
	return &JournalHandler{BaseHandler: base, journal: journal}
}

// History lists recent decisions, newest first.
// GET /api/v1/documents/:id/journal?limit=
func (h *JournalHandler) History(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	items, err := h.journal.History(c.Request.Context(), documentID, h.ParseUintQuery(c, "limit", 100))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.JournalResponse{DocumentID: documentID, Items: items})
}
