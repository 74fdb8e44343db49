// Package workflow holds the Temporal workflows of the machine worker.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/machines/internal/core"
)

// SweepMachinesResult reports both sweeps of one run.
type SweepMachinesResult struct {
	Networking core.SweepResult `json:"networking"`
	Expired    core.SweepResult `json:"expired"`
}

// SweepMachinesWorkflow runs every five minutes. It deletes the security
// groups of stopped machines first and then terminates expired machines.
// A failed networking sweep does not prevent the expiry sweep.
func SweepMachinesWorkflow(ctx workflow.Context) (*SweepMachinesResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 4 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    2,
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	var res SweepMachinesResult
	if err := workflow.ExecuteActivity(ctx, "SweepOrphanedNetworking").Get(ctx, &res.Networking); err != nil {
		logger.Warn("networking sweep failed", "error", err)
	}

	if err := workflow.ExecuteActivity(ctx, "SweepExpired").Get(ctx, &res.Expired); err != nil {
		return &res, err
	}
	return &res, nil
}
