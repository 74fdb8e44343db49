package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	mw "github.com/edvin/machines/internal/api/middleware"
	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/model"
)

type mockMachines struct {
	mock.Mock
}

func (m *mockMachines) Start(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	args := m.Called(ctx, userID, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Machine), args.Error(1)
}

func (m *mockMachines) Refresh(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	args := m.Called(ctx, userID, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Machine), args.Error(1)
}

func (m *mockMachines) Terminate(ctx context.Context, userID, challengeID int64) (bool, error) {
	args := m.Called(ctx, userID, challengeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMachines) BulkTerminate(ctx context.Context, ids []string) (core.BulkResult, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(core.BulkResult), args.Error(1)
}

func (m *mockMachines) List(ctx context.Context, filter model.MachineFilter, params model.ListParams) ([]model.Machine, bool, error) {
	args := m.Called(ctx, filter, params)
	machines, _ := args.Get(0).([]model.Machine)
	return machines, args.Bool(1), args.Error(2)
}

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Check(ctx context.Context, p *model.Principal, challengeID int64) error {
	return m.Called(ctx, p, challengeID).Error(0)
}

type mockDefinitions struct {
	mock.Mock
}

func (m *mockDefinitions) Get(ctx context.Context, challengeID int64) (*model.MachineDefinition, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MachineDefinition), args.Error(1)
}

func (m *mockDefinitions) List(ctx context.Context) ([]model.MachineDefinition, error) {
	args := m.Called(ctx)
	defs, _ := args.Get(0).([]model.MachineDefinition)
	return defs, args.Error(1)
}

func (m *mockDefinitions) Create(ctx context.Context, challengeID int64, durationMinutes int, config string) (*model.MachineDefinition, error) {
	args := m.Called(ctx, challengeID, durationMinutes, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MachineDefinition), args.Error(1)
}

func (m *mockDefinitions) Update(ctx context.Context, challengeID int64, durationMinutes *int, config *string) (*model.MachineDefinition, error) {
	args := m.Called(ctx, challengeID, durationMinutes, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MachineDefinition), args.Error(1)
}

func (m *mockDefinitions) Delete(ctx context.Context, challengeID int64) error {
	return m.Called(ctx, challengeID).Error(0)
}

type mockAPIKeys struct {
	mock.Mock
}

func (m *mockAPIKeys) Create(ctx context.Context, name string, scopes []string) (*model.APIKey, string, error) {
	args := m.Called(ctx, name, scopes)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.APIKey), args.String(1), args.Error(2)
}

func (m *mockAPIKeys) List(ctx context.Context) ([]model.APIKey, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]model.APIKey)
	return keys, args.Error(1)
}

func (m *mockAPIKeys) Revoke(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withUser injects the principal the request acts for.
func withUser(r *http.Request, userID int64, admin bool) *http.Request {
	p := &model.Principal{UserID: userID, Admin: admin}
	return r.WithContext(context.WithValue(r.Context(), mw.PrincipalKey, p))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}
