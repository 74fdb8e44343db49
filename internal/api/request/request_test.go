package request

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/machines/internal/model"
)

func TestParseListParams_Defaults(t *testing.T) {
	p, err := ParseListParams(httptest.NewRequest("GET", "/machines", nil))
	require.NoError(t, err)
	assert.Equal(t, model.ListParams{Limit: DefaultPageSize}, p)
}

func TestParseListParams_CustomValues(t *testing.T) {
	cursor := "0b9f5a52-3f0e-4c55-9d64-2f1f7f3c8a11"
	p, err := ParseListParams(httptest.NewRequest("GET", "/machines?limit=25&cursor="+cursor, nil))
	require.NoError(t, err)
	assert.Equal(t, model.ListParams{Limit: 25, Cursor: cursor}, p)
}

func TestParseListParams_Limit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"limit=900", MaxPageSize},
		{"limit=abc", DefaultPageSize},
		{"limit=0", DefaultPageSize},
		{"limit=-3", DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := ParseListParams(httptest.NewRequest("GET", "/machines?"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestParseListParams_CursorMustBeMachineID(t *testing.T) {
	_, err := ParseListParams(httptest.NewRequest("GET", "/machines?cursor=abc123", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cursor")
}

func TestDecode_StartMachine(t *testing.T) {
	var req StartMachine
	r := httptest.NewRequest(http.MethodPost, "/machines", bytes.NewBufferString(`{"challenge_id": 7}`))
	require.NoError(t, Decode(r, &req))
	assert.Equal(t, int64(7), req.ChallengeID)

	r = httptest.NewRequest(http.MethodPost, "/machines", bytes.NewBufferString(`{}`))
	err := Decode(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")

	r = httptest.NewRequest(http.MethodPost, "/machines", bytes.NewBufferString(`{bad`))
	err = Decode(r, &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_BulkTerminate_RequiresUUIDs(t *testing.T) {
	var req BulkTerminate
	r := httptest.NewRequest(http.MethodDelete, "/machines",
		bytes.NewBufferString(`{"machine_ids": ["not-a-uuid"]}`))
	assert.Error(t, Decode(r, &req))

	r = httptest.NewRequest(http.MethodDelete, "/machines",
		bytes.NewBufferString(`{"machine_ids": ["7b0c6a1e-3f5d-4c8e-9a2b-1d4e6f8a0b3c"]}`))
	assert.NoError(t, Decode(r, &req))
}

func TestDecode_CreateAPIKey_Scopes(t *testing.T) {
	var req CreateAPIKey
	r := httptest.NewRequest(http.MethodPost, "/api-keys", bytes.NewBufferString(`{"name": "ctfd", "scopes": ["root"]}`))
	assert.Error(t, Decode(r, &req))

	r = httptest.NewRequest(http.MethodPost, "/api-keys", bytes.NewBufferString(`{"name": "ctfd", "scopes": ["admin"]}`))
	assert.NoError(t, Decode(r, &req))
}

func TestRequireInt64(t *testing.T) {
	n, err := RequireInt64("challenge_id", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	for _, bad := range []string{"", "0", "-3", "x"} {
		_, err := RequireInt64("challenge_id", bad)
		assert.Error(t, err, bad)
	}
}

func TestParseMachineFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/machines?user_id=5&challenge_id=7&status=running", nil)
	f, err := ParseMachineFilter(r)
	require.NoError(t, err)
	require.NotNil(t, f.UserID)
	require.NotNil(t, f.ChallengeID)
	require.NotNil(t, f.Status)
	assert.Equal(t, int64(5), *f.UserID)
	assert.Equal(t, int64(7), *f.ChallengeID)
	assert.Equal(t, model.MachineRunning, *f.Status)

	f, err = ParseMachineFilter(httptest.NewRequest("GET", "/machines?status=2", nil))
	require.NoError(t, err)
	assert.Equal(t, model.MachineStoppedPendingCleanup, *f.Status)
	assert.Nil(t, f.UserID)

	_, err = ParseMachineFilter(httptest.NewRequest("GET", "/machines?status=paused", nil))
	assert.Error(t, err)
}
