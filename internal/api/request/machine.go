package request

import (
	"fmt"
	"net/http"

	"github.com/edvin/machines/internal/model"
)

type StartMachine struct {
	ChallengeID int64 `json:"challenge_id" validate:"required,gt=0"`
}

type BulkTerminate struct {
	MachineIDs []string `json:"machine_ids" validate:"required,min=1,max=500,dive,uuid"`
}

// ParseMachineFilter reads the user_id, challenge_id and status query
// parameters of an admin machine listing.
func ParseMachineFilter(r *http.Request) (model.MachineFilter, error) {
	var f model.MachineFilter
	q := r.URL.Query()

	if v := q.Get("user_id"); v != "" {
		id, err := RequireInt64("user_id", v)
		if err != nil {
			return f, err
		}
		f.UserID = &id
	}
	if v := q.Get("challenge_id"); v != "" {
		id, err := RequireInt64("challenge_id", v)
		if err != nil {
			return f, err
		}
		f.ChallengeID = &id
	}
	if v := q.Get("status"); v != "" {
		var status model.MachineStatus
		switch v {
		case "stopped", "0":
			status = model.MachineStopped
		case "running", "1":
			status = model.MachineRunning
		case "stopped_pending_cleanup", "2":
			status = model.MachineStoppedPendingCleanup
		default:
			return f, fmt.Errorf("invalid status %q", v)
		}
		f.Status = &status
	}
	return f, nil
}
