package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"scanflow/internal/core/apperror"
	appctx "scanflow/internal/core/context"
)

// SessionValidator validates device tokens.
type SessionValidator interface {
	ValidateToken(tokenString string) (*appctx.SessionContext, error)
}

// Auth requires a device bearer token and puts its session in the context.
func Auth(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		session, err := validator.ValidateToken(tokenString)
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token"))
			c.Abort()
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// OptionalAuth attaches the device session when a valid token is present
// and lets anonymous requests through.
func OptionalAuth(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if session, err := validator.ValidateToken(tokenString); err == nil && session != nil {
				setSession(c, session)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setSession(c *gin.Context, session *appctx.SessionContext) {
	c.Request = c.Request.WithContext(appctx.WithSession(c.Request.Context(), session))
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
