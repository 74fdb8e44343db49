package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/machines/internal/api/request"
	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/model"
)

type APIKeyService interface {
	Create(ctx context.Context, name string, scopes []string) (*model.APIKey, string, error)
	List(ctx context.Context) ([]model.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

type APIKey struct {
	svc APIKeyService
}

func NewAPIKey(svc APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

type createAPIKeyResponse struct {
	*model.APIKey
	Key string `json:"key"`
}

// Create godoc
//
//	@Summary		Create an API key
//	@Description	The raw key is only returned in this response.
//	@Tags			API Keys
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateAPIKey	true	"Key name and scopes"
//	@Success		201		{object}	createAPIKeyResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/api-keys [post]
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, raw, err := h.svc.Create(r.Context(), req.Name, req.Scopes)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, createAPIKeyResponse{APIKey: key, Key: raw})
}

// List godoc
//
//	@Summary		List API keys
//	@Tags			API Keys
//	@Security		ApiKeyAuth
//	@Success		200	{array}		model.APIKey
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/api-keys [get]
func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if keys == nil {
		keys = []model.APIKey{}
	}
	response.WriteJSON(w, http.StatusOK, keys)
}

// Revoke godoc
//
//	@Summary		Revoke an API key
//	@Tags			API Keys
//	@Security		ApiKeyAuth
//	@Param			id	path	string	true	"API key ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/api-keys/{id} [delete]
func (h *APIKey) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
