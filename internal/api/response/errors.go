package response

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/core"
)

// StatusFor maps a service error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNoMachineCapability):
		return http.StatusNotFound
	case errors.Is(err, core.ErrPaused), errors.Is(err, core.ErrLocked), errors.Is(err, core.ErrPrereqsUnmet):
		return http.StatusForbidden
	case errors.Is(err, core.ErrResourceLimitExceeded):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrProvisioningFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with its mapped status. Only user-facing
// errors are echoed; anything else is logged and replaced by a generic message.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if core.IsUserFacing(err) {
		WriteError(w, status, err.Error())
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	switch status {
	case http.StatusBadGateway:
		WriteError(w, status, "machine orchestrator unavailable, try again later")
	default:
		WriteError(w, status, "internal error")
	}
}
