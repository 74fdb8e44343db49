// Package activity holds the Temporal activities the machine worker runs.
package activity

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/edvin/machines/internal/core"
)

// Sweeper performs the periodic machine sweeps.
type Sweeper interface {
	SweepOrphanedNetworking(ctx context.Context) (core.SweepResult, error)
	SweepExpired(ctx context.Context) (core.SweepResult, error)
}

// MachineSweep contains the activities of the sweep workflow.
type MachineSweep struct {
	sweeper Sweeper
}

// NewMachineSweep creates a new MachineSweep activity struct.
func NewMachineSweep(sweeper Sweeper) *MachineSweep {
	return &MachineSweep{sweeper: sweeper}
}

// SweepOrphanedNetworking deletes the security groups of stopped machines.
func (a *MachineSweep) SweepOrphanedNetworking(ctx context.Context) (core.SweepResult, error) {
	res, err := a.sweeper.SweepOrphanedNetworking(ctx)
	if err == nil {
		activity.GetLogger(ctx).Info("networking sweep done", "processed", res.Processed, "failed", res.Failed)
	}
	return res, err
}

// SweepExpired terminates machines past their expiry.
func (a *MachineSweep) SweepExpired(ctx context.Context) (core.SweepResult, error) {
	res, err := a.sweeper.SweepExpired(ctx)
	if err == nil {
		activity.GetLogger(ctx).Info("expiry sweep done", "processed", res.Processed, "failed", res.Failed)
	}
	return res, err
}
