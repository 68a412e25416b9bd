package handlers

import (
	"github.com/gin-gonic/gin"

	"scanflow/internal/domain/barcode"
	"scanflow/internal/infrastructure/http/v1/dto"
	"scanflow/pkg/logger"
)

// DecodeHandler decodes barcodes without touching a document.
type DecodeHandler struct {
	*BaseHandler
}

// NewDecodeHandler creates a new decode handler.
func NewDecodeHandler(base *BaseHandler) *DecodeHandler {
	return &DecodeHandler{BaseHandler: base}
}

// Decode returns the decoded identity of a barcode.
// POST /api/v1/decode
func (h *DecodeHandler) Decode(c *gin.Context) {
	var req dto.DecodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	id := barcode.Decode(req.Barcode)
	logger.Debug(c.Request.Context(), "barcode decoded", "scheme", id.Scheme, "error", id.Error)

	h.OK(c, dto.FromIdentity(id))
}
