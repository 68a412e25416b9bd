package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "scanflow/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	ctxKeyRequestID = "request_id"
	ctxKeyTraceID   = "trace_id"
)

// Trace adds request tracing context, keeping ids sent by the device.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewRequestContext(c.GetHeader(HeaderTraceID), c.GetHeader(HeaderRequestID))

		ctx := appctx.WithRequest(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ctxKeyTraceID, trace.TraceID)
		c.Set(ctxKeyRequestID, trace.RequestID)

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
