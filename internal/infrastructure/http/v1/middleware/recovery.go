// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"scanflow/internal/core/apperror"
	"scanflow/pkg/logger"
)

// Recovery turns a handler panic into a 500 response. The stack is logged,
// never returned to the device.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				appErr := apperror.NewInternal(fmt.Errorf("panic: %v", err))
				_ = c.Error(appErr)
				// ErrorHandler is unwound by the panic, so render here.
				c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
					"details": map[string]any{"request_id": c.GetString(ctxKeyRequestID)},
				})
			}
		}()
		c.Next()
	}
}
