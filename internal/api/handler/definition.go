package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/machines/internal/api/request"
	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/model"
)

type DefinitionService interface {
	Get(ctx context.Context, challengeID int64) (*model.MachineDefinition, error)
	List(ctx context.Context) ([]model.MachineDefinition, error)
	Create(ctx context.Context, challengeID int64, durationMinutes int, config string) (*model.MachineDefinition, error)
	Update(ctx context.Context, challengeID int64, durationMinutes *int, config *string) (*model.MachineDefinition, error)
	Delete(ctx context.Context, challengeID int64) error
}

type Definition struct {
	svc DefinitionService
}

func NewDefinition(svc DefinitionService) *Definition {
	return &Definition{svc: svc}
}

// List godoc
//
//	@Summary		List machine definitions
//	@Tags			Definitions
//	@Security		ApiKeyAuth
//	@Success		200	{array}		model.MachineDefinition
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/definitions [get]
func (h *Definition) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.svc.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if defs == nil {
		defs = []model.MachineDefinition{}
	}
	response.WriteJSON(w, http.StatusOK, defs)
}

// Get godoc
//
//	@Summary		Get a machine definition
//	@Tags			Definitions
//	@Security		ApiKeyAuth
//	@Param			challengeID	path		int	true	"Challenge ID"
//	@Success		200			{object}	model.MachineDefinition
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Router			/definitions/{challengeID} [get]
func (h *Definition) Get(w http.ResponseWriter, r *http.Request) {
	challengeID, err := request.RequireInt64("challenge ID", chi.URLParam(r, "challengeID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	def, err := h.svc.Get(r.Context(), challengeID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, def)
}

// Create godoc
//
//	@Summary		Create a machine definition
//	@Description	Generates the task family slug and registers the task definition. An empty config registers nothing and the challenge has no machine.
//	@Tags			Definitions
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateDefinition	true	"Definition"
//	@Success		201		{object}	model.MachineDefinition
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Router			/definitions [post]
func (h *Definition) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDefinition
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	def, err := h.svc.Create(r.Context(), req.ChallengeID, req.DurationMinutes, req.Config)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, def)
}

// Update godoc
//
//	@Summary		Update a machine definition
//	@Description	Re-registers the task definition only when the config text changed. Omitted fields are left unchanged.
//	@Tags			Definitions
//	@Security		ApiKeyAuth
//	@Param			challengeID	path		int							true	"Challenge ID"
//	@Param			body		body		request.UpdateDefinition	true	"Definition updates"
//	@Success		200			{object}	model.MachineDefinition
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		502			{object}	response.ErrorResponse
//	@Router			/definitions/{challengeID} [put]
func (h *Definition) Update(w http.ResponseWriter, r *http.Request) {
	challengeID, err := request.RequireInt64("challenge ID", chi.URLParam(r, "challengeID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateDefinition
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	def, err := h.svc.Update(r.Context(), challengeID, req.DurationMinutes, req.Config)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, def)
}

// Delete godoc
//
//	@Summary		Delete a machine definition
//	@Description	Deregisters every task definition revision, stops every running task of the family and removes the definition.
//	@Tags			Definitions
//	@Security		ApiKeyAuth
//	@Param			challengeID	path	int	true	"Challenge ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		502	{object}	response.ErrorResponse
//	@Router			/definitions/{challengeID} [delete]
func (h *Definition) Delete(w http.ResponseWriter, r *http.Request) {
	challengeID, err := request.RequireInt64("challenge ID", chi.URLParam(r, "challengeID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), challengeID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
