package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/machines/internal/api/middleware"
	"github.com/edvin/machines/internal/api/request"
	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/model"
)

// MachineService is the lifecycle controller as the HTTP layer sees it.
type MachineService interface {
	Start(ctx context.Context, userID, challengeID int64) (*model.Machine, error)
	Refresh(ctx context.Context, userID, challengeID int64) (*model.Machine, error)
	Terminate(ctx context.Context, userID, challengeID int64) (bool, error)
	BulkTerminate(ctx context.Context, ids []string) (core.BulkResult, error)
	List(ctx context.Context, filter model.MachineFilter, params model.ListParams) ([]model.Machine, bool, error)
}

// AccessChecker decides whether a principal may start a challenge's machine.
type AccessChecker interface {
	Check(ctx context.Context, p *model.Principal, challengeID int64) error
}

type Machine struct {
	svc  MachineService
	gate AccessChecker
}

func NewMachine(svc MachineService, gate AccessChecker) *Machine {
	return &Machine{svc: svc, gate: gate}
}

// Ping godoc
//
//	@Summary		Liveness check for the machine plugin
//	@Description	Unauthenticated check used by the CTF front end to detect that machine support is available.
//	@Tags			Machines
//	@Success		200	{object}	map[string]any
//	@Router			/machines/ping [get]
func (h *Machine) Ping(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": "pong"})
}

// Start godoc
//
//	@Summary		Start a machine
//	@Description	Starts the caller's machine for a challenge. The access gate runs first; a user may have one running, unexpired machine at a time.
//	@Tags			Machines
//	@Security		ApiKeyAuth
//	@Param			X-User-ID	header		int						true	"Acting user ID"
//	@Param			body		body		request.StartMachine	true	"Challenge to start"
//	@Success		201			{object}	model.Machine
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		401			{object}	response.ErrorResponse
//	@Failure		403			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		409			{object}	response.ErrorResponse
//	@Failure		502			{object}	response.ErrorResponse
//	@Router			/machines [post]
func (h *Machine) Start(w http.ResponseWriter, r *http.Request) {
	p := mw.GetPrincipal(r.Context())
	if p == nil {
		response.WriteServiceError(w, r, core.ErrAuthRequired)
		return
	}

	var req request.StartMachine
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.gate.Check(r.Context(), p, req.ChallengeID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	m, err := h.svc.Start(r.Context(), p.UserID, req.ChallengeID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, m)
}

// Refresh godoc
//
//	@Summary		Get machine status
//	@Description	Returns the caller's running machine for a challenge. The orchestrator is polled at most once per 5 minutes while the task is RUNNING.
//	@Tags			Machines
//	@Security		ApiKeyAuth
//	@Param			X-User-ID	header		int	true	"Acting user ID"
//	@Param			challengeID	path		int	true	"Challenge ID"
//	@Success		200			{object}	model.Machine
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		502			{object}	response.ErrorResponse
//	@Router			/machines/{challengeID} [get]
func (h *Machine) Refresh(w http.ResponseWriter, r *http.Request) {
	p, challengeID, ok := principalAndChallenge(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Refresh(r.Context(), p.UserID, challengeID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, m)
}

// Terminate godoc
//
//	@Summary		Stop a machine
//	@Description	Stops the caller's running machines for a challenge. Succeeds when they are already stopped.
//	@Tags			Machines
//	@Security		ApiKeyAuth
//	@Param			X-User-ID	header		int	true	"Acting user ID"
//	@Param			challengeID	path		int	true	"Challenge ID"
//	@Success		200			{object}	response.SuccessResponse
//	@Failure		400			{object}	response.ErrorResponse
//	@Failure		404			{object}	response.ErrorResponse
//	@Failure		502			{object}	response.ErrorResponse
//	@Router			/machines/{challengeID} [delete]
func (h *Machine) Terminate(w http.ResponseWriter, r *http.Request) {
	p, challengeID, ok := principalAndChallenge(w, r)
	if !ok {
		return
	}

	stopped, err := h.svc.Terminate(r.Context(), p.UserID, challengeID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, response.SuccessResponse{Success: stopped})
}

type bulkTerminateResponse struct {
	Success bool `json:"success"`
	core.BulkResult
}

// BulkTerminate godoc
//
//	@Summary		Stop machines by ID
//	@Description	Stops the running machines among the given IDs in order. The first failure aborts; the reply names it and lists the IDs not processed, with success=false.
//	@Tags			Machines
//	@Security		ApiKeyAuth
//	@Param			body	body		request.BulkTerminate	true	"Machine IDs"
//	@Success		200		{object}	bulkTerminateResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/machines [delete]
func (h *Machine) BulkTerminate(w http.ResponseWriter, r *http.Request) {
	var req request.BulkTerminate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.BulkTerminate(r.Context(), req.MachineIDs)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, bulkTerminateResponse{Success: res.OK(), BulkResult: res})
}

// List godoc
//
//	@Summary		List machines
//	@Description	Returns machine records of every status, paged by machine ID.
//	@Tags			Machines
//	@Security		ApiKeyAuth
//	@Param			user_id			query		int		false	"Filter by user"
//	@Param			challenge_id	query		int		false	"Filter by challenge"
//	@Param			status			query		string	false	"running, stopped or stopped_pending_cleanup"
//	@Param			limit			query		int		false	"Page size"			default(100)
//	@Param			cursor			query		string	false	"Machine ID to continue after"
//	@Success		200				{object}	response.PaginatedResponse{items=[]model.Machine}
//	@Failure		400				{object}	response.ErrorResponse
//	@Failure		500				{object}	response.ErrorResponse
//	@Router			/machines [get]
func (h *Machine) List(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseMachineFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	params, err := request.ParseListParams(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	machines, hasMore, err := h.svc.List(r.Context(), filter, params)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WritePage(w, machines, hasMore, func(m model.Machine) string { return m.ID })
}

func principalAndChallenge(w http.ResponseWriter, r *http.Request) (*model.Principal, int64, bool) {
	p := mw.GetPrincipal(r.Context())
	if p == nil {
		response.WriteServiceError(w, r, core.ErrAuthRequired)
		return nil, 0, false
	}
	challengeID, err := request.RequireInt64("challenge ID", chi.URLParam(r, "challengeID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}
	return p, challengeID, true
}
