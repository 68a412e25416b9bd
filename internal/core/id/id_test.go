package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_IsVersion7(t *testing.T) {
	parsed, err := Parse(NewKey())
	require.NoError(t, err)

	assert.Equal(t, 7, int(parsed.Version()))
	assert.False(t, IsNil(parsed))
}

func TestNewKey_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		seen[NewKey()] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
