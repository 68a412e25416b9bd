package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"scanflow/internal/domain/scanning"
	"scanflow/internal/infrastructure/http/v1/dto"
)

// Scanner evaluates scans.
type Scanner interface {
	Scan(ctx context.Context, req scanning.ScanRequest) (scanning.Result, error)
}

// ScanHandler handles scan requests from devices.
type ScanHandler struct {
	*BaseHandler
	scanner Scanner
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(base *BaseHandler, scanner Scanner) *ScanHandler {
	return &ScanHandler{BaseHandler: base, scanner: scanner}
}

// Scan evaluates one scan. Business rejections are 200 responses; only
// request and storage failures are errors.
// POST /api/v1/documents/:id/scans
func (h *ScanHandler) Scan(c *gin.Context) {
	documentID, ok := h.DocumentID(c)
	if !ok {
		return
	}

	var req dto.ScanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.scanner.Scan(c.Request.Context(), req.ToDomain(documentID))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromResult(res))
}
