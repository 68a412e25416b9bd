package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"scanflow/internal/core/types"
	"scanflow/internal/domain/deltaqueue"
	"scanflow/internal/infrastructure/http/v1/dto"
)

// QueueService answers delta queue questions.
type QueueService interface {
	Sum(ctx context.Context, documentID, rowKey string) (types.Quantity, error)
	MarkSent(ctx context.Context, documentID string, ids []string) error
	Unsent(ctx context.Context, documentID string) (bool, error)
	Merge(ctx context.Context, documentID string) ([]deltaqueue.MergedLine, error)
}

// QueueHandler exposes the delta queue to the sync process.
type QueueHandler struct {
	*BaseHandler
	queue QueueService
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(base *BaseHandler, queue QueueService) *QueueHandler {
	return &QueueHandler{BaseHandler: base, queue: queue}
}

// Sum returns the summed delta of a line.
// GET /api/v1/documents/:id/queue/sum?rowKey=
func (h *QueueHandler) Sum(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	rowKey := c.Query("rowKey")
	sum, err := h.queue.Sum(c.Request.Context(), documentID, rowKey)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.QueueSumResponse{RowKey: rowKey, Quantity: sum})
}

// Unsent tells whether the document has entries to sync.
// GET /api/v1/documents/:id/queue/unsent
func (h *QueueHandler) Unsent(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	unsent, err := h.queue.Unsent(c.Request.Context(), documentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.UnsentResponse{Unsent: unsent})
}

// Merge returns per-line totals.
// GET /api/v1/documents/:id/queue/merge
func (h *QueueHandler) Merge(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	lines, err := h.queue.Merge(c.Request.Context(), documentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MergeResponse{DocumentID: documentID, Lines: lines})
}

// MarkSent flags synced entries.
// POST /api/v1/documents/:id/queue/sent
func (h *QueueHandler) MarkSent(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	var req dto.MarkSentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.queue.MarkSent(c.Request.Context(), documentID, req.IDs); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
