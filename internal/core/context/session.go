// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// SessionContext identifies the scanning device session behind a request.
// Device quantities and queue entries are attributed to DeviceID.
type SessionContext struct {
	DeviceID  string
	UserID    string
	SessionID string
}

type sessionContextKey struct{}

// WithSession adds SessionContext to context.
func WithSession(ctx context.Context, s *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// GetSession returns SessionContext from context.
func GetSession(ctx context.Context) *SessionContext {
	if v, ok := ctx.Value(sessionContextKey{}).(*SessionContext); ok {
		return v
	}
	return nil
}

// GetDeviceID returns device ID from context or empty string.
func GetDeviceID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.DeviceID
	}
	return ""
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.UserID
	}
	return ""
}
