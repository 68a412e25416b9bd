package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanflow/internal/domain/auth"
	"scanflow/internal/infrastructure/http/v1/dto"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines(t *testing.T, out string) []dto.DecodeResponse {
	t.Helper()
	var res []dto.DecodeResponse
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var r dto.DecodeResponse
		require.NoError(t, dec.Decode(&r))
		res = append(res, r)
	}
	return res
}

func TestDecode_Args(t *testing.T) {
	out, err := run(t, "", "decode", "2000000058177", "0104601234567893<GS>21ABC123<GS>93dGVz")
	require.NoError(t, err)

	res := decodeLines(t, out)
	require.Len(t, res, 2)
	assert.Equal(t, "2000000058177", res[0].GTIN)
	assert.Equal(t, "04601234567893", res[1].GTIN)
	assert.Equal(t, "ABC123", res[1].Serial)
	assert.True(t, res[1].IsMark)
}

func TestDecode_Stdin(t *testing.T) {
	out, err := run(t, "2000000058177\r\n\n]d20104601234567893\n", "decode")
	require.NoError(t, err)

	res := decodeLines(t, out)
	require.Len(t, res, 2)
	assert.Empty(t, res[0].Error)
	assert.NotEmpty(t, res[1].Error)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := run(t, "", "token", "--device", "tsd-7", "--user", "u-1", "--ttl", "1h")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	sess, err := auth.NewJWTService(auth.DefaultJWTConfig("cli-secret")).ValidateToken(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "tsd-7", sess.DeviceID)
	assert.Equal(t, "u-1", sess.UserID)
}

func TestToken_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "", "token", "--device", "tsd-7")
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "cli-secret")
	_, err = run(t, "", "token")
	assert.Error(t, err)
}
