package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/model"
	"github.com/edvin/machines/internal/platform"
)

// DefinitionService manages the per-challenge machine templates and their
// task definitions on the orchestrator.
type DefinitionService struct {
	store    DefinitionStore
	orch     Orchestrator
	machines *MachineService
	logger   zerolog.Logger
}

func NewDefinitionService(store DefinitionStore, orch Orchestrator, machines *MachineService, logger zerolog.Logger) *DefinitionService {
	return &DefinitionService{
		store:    store,
		orch:     orch,
		machines: machines,
		logger:   logger.With().Str("component", "machine-definitions").Logger(),
	}
}

func (s *DefinitionService) Get(ctx context.Context, challengeID int64) (*model.MachineDefinition, error) {
	def, err := s.store.Get(ctx, challengeID)
	if err != nil {
		return nil, persistence("get machine definition", err)
	}
	if def == nil {
		return nil, ErrNotFound
	}
	return def, nil
}

func (s *DefinitionService) List(ctx context.Context) ([]model.MachineDefinition, error) {
	defs, err := s.store.List(ctx)
	if err != nil {
		return nil, persistence("list machine definitions", err)
	}
	return defs, nil
}

// Create registers a definition for a new challenge. An empty config
// creates the definition without registering a task definition.
func (s *DefinitionService) Create(ctx context.Context, challengeID int64, durationMinutes int, config string) (*model.MachineDefinition, error) {
	if durationMinutes <= 0 {
		durationMinutes = model.DefaultMachineDuration
	}
	now := time.Now()
	def := &model.MachineDefinition{
		ChallengeID:     challengeID,
		Slug:            platform.NewSlug(),
		DurationMinutes: durationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if config != "" {
		normalized, cfg, err := model.NormalizeMachineConfig(config)
		if err != nil {
			return nil, invalidConfig(err)
		}
		if err := s.orch.RegisterTaskDefinition(ctx, def.Slug, cfg.TaskDefinition); err != nil {
			return nil, provisioning("register task definition", err)
		}
		def.Config = normalized
	}

	if err := s.store.Create(ctx, def); err != nil {
		return nil, persistence("create machine definition", err)
	}
	s.logger.Info().Int64("challenge", challengeID).Str("slug", def.Slug).Msg("machine definition created")
	return def, nil
}

// Update changes a definition. The task definition is re-registered only
// when the normalized config differs from the stored one.
func (s *DefinitionService) Update(ctx context.Context, challengeID int64, durationMinutes *int, config *string) (*model.MachineDefinition, error) {
	def, err := s.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	if durationMinutes != nil && *durationMinutes > 0 {
		def.DurationMinutes = *durationMinutes
	}

	if config != nil && *config != def.Config {
		var normalized string
		if *config != "" {
			var cfg *model.MachineConfig
			normalized, cfg, err = model.NormalizeMachineConfig(*config)
			if err != nil {
				return nil, invalidConfig(err)
			}
			if normalized != def.Config {
				if err := s.orch.RegisterTaskDefinition(ctx, def.Slug, cfg.TaskDefinition); err != nil {
					return nil, provisioning("register task definition", err)
				}
				s.logger.Info().Str("slug", def.Slug).Msg("task definition re-registered")
			}
		}
		def.Config = normalized
	}

	def.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, def); err != nil {
		return nil, persistence("update machine definition", err)
	}
	return def, nil
}

// Delete stops every machine of the challenge, deregisters all task
// definition revisions and removes the definition.
func (s *DefinitionService) Delete(ctx context.Context, challengeID int64) error {
	def, err := s.Get(ctx, challengeID)
	if err != nil {
		return err
	}

	if _, err := s.machines.TerminateAll(ctx, model.MachineFilter{ChallengeID: &challengeID}); err != nil {
		return err
	}
	if err := s.orch.DeregisterAllRevisions(ctx, def.Slug); err != nil {
		return provisioning("deregister task definitions", err)
	}
	if err := s.orch.StopAllByFamily(ctx, def.Slug); err != nil {
		return provisioning("stop family tasks", err)
	}
	if err := s.store.Delete(ctx, challengeID); err != nil {
		return persistence("delete machine definition", err)
	}
	s.logger.Info().Int64("challenge", challengeID).Str("slug", def.Slug).Msg("machine definition deleted")
	return nil
}
