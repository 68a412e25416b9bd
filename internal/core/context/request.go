package context

import (
	"context"

	"github.com/google/uuid"
)

// RequestContext correlates one device request across logs, spans and the
// scan journal. Terminals resend both ids when they retry a scan.
type RequestContext struct {
	TraceID   string
	RequestID string
}

type requestContextKey struct{}

// NewRequestContext keeps the ids a device sent and generates the missing ones.
func NewRequestContext(traceID, requestID string) *RequestContext {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &RequestContext{TraceID: traceID, RequestID: requestID}
}

// WithRequest adds RequestContext to context.
func WithRequest(ctx context.Context, r *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, r)
}

// GetRequest returns RequestContext from context.
func GetRequest(ctx context.Context) *RequestContext {
	if v, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if r := GetRequest(ctx); r != nil {
		return r.RequestID
	}
	return ""
}

// LogFields returns the request ids and the scanning device of ctx as
// key/value pairs. Empty values are left out.
func LogFields(ctx context.Context) []any {
	var kv []any
	if r := GetRequest(ctx); r != nil {
		kv = append(kv, "trace_id", r.TraceID, "request_id", r.RequestID)
	}
	if s := GetSession(ctx); s != nil {
		if s.DeviceID != "" {
			kv = append(kv, "device_id", s.DeviceID)
		}
		if s.UserID != "" {
			kv = append(kv, "user_id", s.UserID)
		}
	}
	return kv
}
