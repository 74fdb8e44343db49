package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/model"
)

func newDefinitionHandler() (*Definition, *mockDefinitions) {
	svc := &mockDefinitions{}
	return NewDefinition(svc), svc
}

func TestDefinitionCreate_Success(t *testing.T) {
	h, svc := newDefinitionHandler()
	cfg := `{"taskDefinition": {"containerDefinitions": []}}`
	svc.On("Create", mock.Anything, int64(7), 30, cfg).
		Return(&model.MachineDefinition{ChallengeID: 7, Slug: "ctfd-abc", DurationMinutes: 30}, nil)

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/definitions", map[string]any{
		"challenge_id": 7, "duration_minutes": 30, "config": cfg,
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body model.MachineDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ctfd-abc", body.Slug)
}

func TestDefinitionCreate_InvalidConfig(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("Create", mock.Anything, int64(7), 0, "{").
		Return(nil, fmt.Errorf("%w: unexpected end of JSON input", core.ErrInvalidConfig))

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/definitions", map[string]any{"challenge_id": 7, "config": "{"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid machine config")
}

func TestDefinitionCreate_DurationOutOfRange(t *testing.T) {
	h, _ := newDefinitionHandler()
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/definitions", map[string]any{"challenge_id": 7, "duration_minutes": -5}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDefinitionGet_NotFound(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("Get", mock.Anything, int64(9)).Return(nil, core.ErrNotFound)

	rec := httptest.NewRecorder()
	h.Get(rec, withChiURLParam(newRequest(http.MethodGet, "/definitions/9", nil), "challengeID", "9"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefinitionUpdate_PartialFields(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(d *int) bool { return d != nil && *d == 90 }), (*string)(nil)).
		Return(&model.MachineDefinition{ChallengeID: 7, DurationMinutes: 90}, nil)

	rec := httptest.NewRecorder()
	r := withChiURLParam(newRequest(http.MethodPut, "/definitions/7", map[string]any{"duration_minutes": 90}), "challengeID", "7")
	h.Update(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDefinitionDelete(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("Delete", mock.Anything, int64(7)).Return(nil)

	rec := httptest.NewRecorder()
	h.Delete(rec, withChiURLParam(newRequest(http.MethodDelete, "/definitions/7", nil), "challengeID", "7"))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDefinitionDelete_TerminateFailed(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("Delete", mock.Anything, int64(7)).
		Return(&core.ProvisioningError{Op: "stop task", Err: fmt.Errorf("throttled")})

	rec := httptest.NewRecorder()
	h.Delete(rec, withChiURLParam(newRequest(http.MethodDelete, "/definitions/7", nil), "challengeID", "7"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDefinitionList(t *testing.T) {
	h, svc := newDefinitionHandler()
	svc.On("List", mock.Anything).Return([]model.MachineDefinition{{ChallengeID: 1}, {ChallengeID: 2}}, nil)

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/definitions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []model.MachineDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}
