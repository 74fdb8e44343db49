package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/model"
	"github.com/edvin/machines/internal/platform"
)

const (
	// MachineLimit is the number of active machines a user may hold at once.
	MachineLimit = 1
	// StatusCacheTTL is how long a confirmed running status suppresses polling.
	StatusCacheTTL = 5 * time.Minute
)

// MachineService is the machine lifecycle controller. It reconciles user
// actions and scheduled sweeps with the orchestrator and the record store.
type MachineService struct {
	store   MachineStore
	defs    DefinitionStore
	orch    Orchestrator
	network NetworkProvisioner
	cache   StatusCache
	events  EventPublisher
	logger  zerolog.Logger
	now     func() time.Time
}

func NewMachineService(
	store MachineStore,
	defs DefinitionStore,
	orch Orchestrator,
	network NetworkProvisioner,
	cache StatusCache,
	events EventPublisher,
	logger zerolog.Logger,
) *MachineService {
	return &MachineService{
		store:   store,
		defs:    defs,
		orch:    orch,
		network: network,
		cache:   cache,
		events:  events,
		logger:  logger.With().Str("component", "machine-controller").Logger(),
		now:     time.Now,
	}
}

// Start provisions a new machine for the user on the given challenge.
func (s *MachineService) Start(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	m, err := s.start(ctx, userID, challengeID)
	if err != nil {
		machineOpsTotal.WithLabelValues("start", "error").Inc()
		return nil, err
	}
	machineOpsTotal.WithLabelValues("start", "success").Inc()
	return m, nil
}

func (s *MachineService) start(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	def, err := s.defs.Get(ctx, challengeID)
	if err != nil {
		return nil, persistence("get machine definition", err)
	}
	if def == nil {
		return nil, ErrNotFound
	}
	if !def.HasConfig() {
		return nil, ErrNoMachineCapability
	}
	cfg, err := model.ParseMachineConfig(def.Config)
	if err != nil {
		return nil, invalidConfig(err)
	}

	now := s.now()
	active, err := s.store.CountActiveByUser(ctx, userID, now)
	if err != nil {
		return nil, persistence("count active machines", err)
	}
	if active >= MachineLimit {
		return nil, ErrResourceLimitExceeded
	}

	var netCfg *model.NetworkConfig
	if cfg.LaunchType == model.LaunchTypeFargate {
		netCfg, err = s.network.Allocate(ctx, def.Slug, cfg.Networks)
		if err != nil {
			return nil, provisioning("allocate network", err)
		}
	}

	detail, err := s.orch.RunTask(ctx, def.Slug, cfg, netCfg)
	if err != nil {
		return nil, provisioning("run task", err)
	}

	m := &model.Machine{
		ID:          platform.NewID(),
		UserID:      userID,
		ChallengeID: challengeID,
		TaskArn:     detail.TaskArn,
		Status:      model.MachineRunning,
		StartedAt:   now,
		ExpiresAt:   now.Add(def.Duration()),
		Detail:      detail,
		UpdatedAt:   now,
	}

	inserted, err := s.store.InsertGuarded(ctx, m, MachineLimit)
	if err != nil {
		s.abandon(ctx, m, false)
		return nil, persistence("insert machine", err)
	}
	if !inserted {
		// A concurrent start for the same user committed first.
		s.abandon(ctx, m, true)
		return nil, ErrResourceLimitExceeded
	}

	s.logger.Info().
		Str("machine", m.ID).
		Int64("user", userID).
		Int64("challenge", challengeID).
		Str("task", m.TaskArn).
		Time("expires_at", m.ExpiresAt).
		Msg("machine started")
	s.publish(ctx, model.EventMachineStarted, m)
	return m, nil
}

// abandon stops a task whose record could not be committed. When record is
// set the machine is kept as pending cleanup so the networking sweep later
// deletes its security groups.
func (s *MachineService) abandon(ctx context.Context, m *model.Machine, record bool) {
	log := s.logger.With().Str("machine", m.ID).Str("task", m.TaskArn).Logger()
	if err := s.orch.StopTask(ctx, m.TaskArn); err != nil {
		log.Error().Err(err).Msg("failed to stop abandoned task")
	}
	if !record {
		return
	}
	m.Status = model.MachineStoppedPendingCleanup
	m.ExpiresAt = s.now()
	if err := s.store.Insert(ctx, m); err != nil {
		log.Error().Err(err).Msg("failed to record abandoned machine")
	}
}

// Refresh polls the orchestrator for the user's running machine on the
// challenge, unless its running status was confirmed recently.
func (s *MachineService) Refresh(ctx context.Context, userID, challengeID int64) (*model.Machine, error) {
	m, err := s.store.FindRunning(ctx, userID, challengeID)
	if err != nil {
		return nil, persistence("find running machine", err)
	}
	if m == nil {
		return nil, ErrNotFound
	}

	if cached, ok, err := s.cache.Get(ctx, m.ID); err != nil {
		s.logger.Warn().Err(err).Str("machine", m.ID).Msg("status cache lookup failed")
	} else if ok {
		statusCacheTotal.WithLabelValues("hit").Inc()
		m.Detail = cached
		return m, nil
	}
	statusCacheTotal.WithLabelValues("miss").Inc()

	observed, err := s.orch.DescribeTask(ctx, m.TaskArn)
	if err != nil {
		machineOpsTotal.WithLabelValues("refresh", "error").Inc()
		return nil, provisioning("describe task", err)
	}
	m.Detail = m.Detail.Merge(observed)
	m.UpdatedAt = s.now()

	if err := s.store.UpdateDetail(ctx, m.ID, m.Detail); err != nil {
		machineOpsTotal.WithLabelValues("refresh", "error").Inc()
		return nil, persistence("update machine detail", err)
	}

	if m.Detail.Running() {
		if err := s.cache.Set(ctx, m.ID, m.Detail, StatusCacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("machine", m.ID).Msg("status cache store failed")
		}
	}
	machineOpsTotal.WithLabelValues("refresh", "success").Inc()
	return m, nil
}

// Terminate stops the user's running machines on the challenge. Stopping
// a pair whose machines are all stopped already succeeds.
func (s *MachineService) Terminate(ctx context.Context, userID, challengeID int64) (bool, error) {
	exists, err := s.store.ExistsForPair(ctx, userID, challengeID)
	if err != nil {
		return false, persistence("look up machines", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return s.TerminateAll(ctx, model.MachineFilter{UserID: &userID, ChallengeID: &challengeID})
}

// TerminateAll stops every running machine matching filter. The first
// failed stop aborts the batch; machines after it are left untouched.
func (s *MachineService) TerminateAll(ctx context.Context, filter model.MachineFilter) (bool, error) {
	machines, err := s.store.ListRunning(ctx, filter)
	if err != nil {
		return false, persistence("list running machines", err)
	}

	for i := range machines {
		if err := s.stop(ctx, &machines[i]); err != nil {
			machineOpsTotal.WithLabelValues("terminate", "error").Inc()
			s.logger.Error().Err(err).Str("machine", machines[i].ID).
				Int("remaining", len(machines)-i-1).
				Msg("terminate aborted")
			return false, err
		}
	}
	machineOpsTotal.WithLabelValues("terminate", "success").Inc()
	return true, nil
}

// stop stops one machine's task and commits it as pending network cleanup.
func (s *MachineService) stop(ctx context.Context, m *model.Machine) error {
	if err := s.orch.StopTask(ctx, m.TaskArn); err != nil {
		return provisioning("stop task", err)
	}
	now := s.now()
	if err := s.store.UpdateStatus(ctx, m.ID, model.MachineStoppedPendingCleanup, &now); err != nil {
		return persistence("update machine status", err)
	}
	m.Status = model.MachineStoppedPendingCleanup
	m.ExpiresAt = now

	s.logger.Info().Str("machine", m.ID).Str("task", m.TaskArn).Msg("machine terminated")
	s.publish(ctx, model.EventMachineTerminated, m)
	return nil
}

// BulkFailure names a machine a bulk terminate could not stop.
type BulkFailure struct {
	MachineID string `json:"machine_id"`
	Error     string `json:"error"`
}

// BulkResult reports the outcome of BulkTerminate.
type BulkResult struct {
	Terminated   []string     `json:"terminated"`
	Failed       *BulkFailure `json:"failed,omitempty"`
	NotProcessed []string     `json:"not_processed,omitempty"`
}

// OK reports whether every requested running machine was stopped.
func (r BulkResult) OK() bool {
	return r.Failed == nil && len(r.NotProcessed) == 0
}

// BulkTerminate stops the running machines among ids. It aborts on the
// first failure and reports the machines it did not get to.
func (s *MachineService) BulkTerminate(ctx context.Context, ids []string) (BulkResult, error) {
	var res BulkResult
	machines, err := s.store.ListRunningByIDs(ctx, ids)
	if err != nil {
		return res, persistence("list machines", err)
	}

	for i := range machines {
		if err := s.stop(ctx, &machines[i]); err != nil {
			s.logger.Error().Err(err).Str("machine", machines[i].ID).Msg("bulk terminate failed")
			res.Failed = &BulkFailure{MachineID: machines[i].ID, Error: err.Error()}
			for _, rest := range machines[i+1:] {
				res.NotProcessed = append(res.NotProcessed, rest.ID)
			}
			return res, nil
		}
		res.Terminated = append(res.Terminated, machines[i].ID)
	}
	return res, nil
}

// SweepResult counts what one sweep pass did.
type SweepResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// SweepExpired terminates every running machine past its expiry. A failure
// on one machine is logged and the sweep moves on.
func (s *MachineService) SweepExpired(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	machines, err := s.store.ListExpired(ctx, s.now())
	if err != nil {
		return res, persistence("list expired machines", err)
	}

	for i := range machines {
		m := &machines[i]
		s.logger.Info().Str("machine", m.ID).Msg("terminating expired machine")
		if err := s.stop(ctx, m); err != nil {
			res.Failed++
			sweepRecordsTotal.WithLabelValues("expired", "error").Inc()
			s.logger.Error().Err(err).Str("machine", m.ID).Msg("failed to terminate expired machine")
			continue
		}
		res.Processed++
		sweepRecordsTotal.WithLabelValues("expired", "success").Inc()
	}
	return res, nil
}

// SweepOrphanedNetworking deletes the security groups of stopped machines
// and marks them stopped. Failures stay pending for the next pass.
func (s *MachineService) SweepOrphanedNetworking(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	machines, err := s.store.ListByStatus(ctx, model.MachineStoppedPendingCleanup)
	if err != nil {
		return res, persistence("list machines pending cleanup", err)
	}

	for i := range machines {
		m := &machines[i]
		if err := s.cleanup(ctx, m); err != nil {
			res.Failed++
			sweepRecordsTotal.WithLabelValues("networking", "error").Inc()
			s.logger.Warn().Err(err).Str("machine", m.ID).Msg("failed to delete security groups")
			continue
		}
		res.Processed++
		sweepRecordsTotal.WithLabelValues("networking", "success").Inc()
	}
	return res, nil
}

func (s *MachineService) cleanup(ctx context.Context, m *model.Machine) error {
	if groups := m.Detail.SecurityGroupIDs(); len(groups) > 0 {
		if err := s.orch.DeleteSecurityGroups(ctx, groups); err != nil {
			return provisioning("delete security groups", err)
		}
	}
	if err := s.store.UpdateStatus(ctx, m.ID, model.MachineStopped, nil); err != nil {
		return persistence("update machine status", err)
	}
	m.Status = model.MachineStopped
	s.publish(ctx, model.EventMachineCleaned, m)
	return nil
}

// List returns a page of machine records for administrators.
func (s *MachineService) List(ctx context.Context, filter model.MachineFilter, params model.ListParams) ([]model.Machine, bool, error) {
	machines, hasMore, err := s.store.List(ctx, filter, params)
	if err != nil {
		return nil, false, persistence("list machines", err)
	}
	return machines, hasMore, nil
}

func (s *MachineService) publish(ctx context.Context, typ string, m *model.Machine) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, model.MachineEvent{
		Type:        typ,
		MachineID:   m.ID,
		UserID:      m.UserID,
		ChallengeID: m.ChallengeID,
		At:          s.now(),
	})
}

// IsUserFacing reports whether err should be shown verbatim to callers.
func IsUserFacing(err error) bool {
	for _, target := range []error{
		ErrAuthRequired, ErrNotFound, ErrPaused, ErrLocked,
		ErrPrereqsUnmet, ErrNoMachineCapability, ErrResourceLimitExceeded,
		ErrInvalidConfig,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
