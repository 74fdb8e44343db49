// Package app assembles the machine services from configuration. Both
// binaries share it so that the API and the worker drive the same stack.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/cache"
	"github.com/edvin/machines/internal/config"
	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/ecs"
	"github.com/edvin/machines/internal/events"
	"github.com/edvin/machines/internal/network"
	"github.com/edvin/machines/internal/store"
)

type Runtime struct {
	Services *core.Services
	closers  []func()
}

// Build wires the stores, the AWS clients, the status cache and the event
// publisher into the core services.
func Build(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	awsCfg, err := ecs.LoadAWSConfig(ctx, ecs.AWSSettings{
		Region:      cfg.AWSRegion,
		AccessKey:   cfg.AWSAccessKey,
		SecretKey:   cfg.AWSSecretKey,
		MaxAttempts: cfg.OrchestratorMaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	statusCache, err := rt.statusCache(ctx, cfg.RedisURL, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	publisher, err := rt.publisher(cfg, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Services = core.NewServices(core.Deps{
		DB:           pool,
		Machines:     store.NewMachineStore(pool),
		Definitions:  store.NewDefinitionStore(pool),
		Orchestrator: ecs.NewClientFromConfig(awsCfg, cfg.ECSCluster, cfg.OrchestratorTimeout, logger),
		Network:      network.NewProvisioner(ec2.NewFromConfig(awsCfg), cfg.VPCID, cfg.OrchestratorTimeout, logger),
		Cache:        statusCache,
		Events:       publisher,
		Logger:       logger,
	})
	return rt, nil
}

// statusCache picks the shared redis cache when url is set and the
// in-process cache otherwise.
func (rt *Runtime) statusCache(ctx context.Context, url string, logger zerolog.Logger) (core.StatusCache, error) {
	if url == "" {
		mem, err := cache.NewMemory(cache.DefaultMemoryEntries)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, mem.Close)
		logger.Info().Msg("using in-process status cache")
		return mem, nil
	}

	client, err := cache.DialRedis(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("status cache: %w", err)
	}
	rt.closers = append(rt.closers, func() { client.Close() })
	logger.Info().Msg("using redis status cache")
	return cache.NewRedis(client), nil
}

func (rt *Runtime) publisher(cfg *config.Config, logger zerolog.Logger) (core.EventPublisher, error) {
	if cfg.NATSURL == "" {
		return events.Noop{}, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "machines"
	}
	nc, err := events.Connect(cfg.NATSURL, name, logger)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	})
	return events.NewPublisher(nc, logger), nil
}

// Close releases the cache and event connections in reverse order.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
