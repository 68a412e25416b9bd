package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_RoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), &SessionContext{DeviceID: "tsd-07", UserID: "u1"})

	assert.Equal(t, "tsd-07", GetDeviceID(ctx))
	assert.Equal(t, "u1", GetUserID(ctx))
}

func TestSession_Missing(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, GetSession(ctx))
	assert.Empty(t, GetDeviceID(ctx))
	assert.Empty(t, GetRequestID(ctx))
}

func TestNewRequestContext(t *testing.T) {
	rc := NewRequestContext("", "")
	assert.NotEmpty(t, rc.TraceID)
	assert.NotEqual(t, rc.TraceID, rc.RequestID)
	assert.Equal(t, rc.RequestID, GetRequestID(WithRequest(context.Background(), rc)))

	kept := NewRequestContext("trace-1", "req-1")
	assert.Equal(t, &RequestContext{TraceID: "trace-1", RequestID: "req-1"}, kept)
}

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))

	ctx := WithRequest(context.Background(), &RequestContext{TraceID: "t1", RequestID: "r1"})
	ctx = WithSession(ctx, &SessionContext{DeviceID: "tsd-07"})

	assert.Equal(t, []any{"trace_id", "t1", "request_id", "r1", "device_id", "tsd-07"}, LogFields(ctx))
}
