package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	enumspb "go.temporal.io/api/enums/v1"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/machines/internal/activity"
	"github.com/edvin/machines/internal/app"
	"github.com/edvin/machines/internal/config"
	"github.com/edvin/machines/internal/db"
	"github.com/edvin/machines/internal/logging"
	"github.com/edvin/machines/internal/metrics"
	"github.com/edvin/machines/internal/workflow"
)

const taskQueue = "machines-tasks"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "machines-worker"
	}

	if err := cfg.Validate("machines-worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)

	rt, err := app.Build(ctx, cfg, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build machine services")
	}
	defer rt.Close()

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	w := worker.New(tc, taskQueue, worker.Options{})
	w.RegisterActivity(activity.NewMachineSweep(rt.Services.Machine))
	w.RegisterWorkflow(workflow.SweepMachinesWorkflow)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr, pool.Ping)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", taskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	// Errors for already-existing schedules are ignored so that re-deploys
	// do not fail.
	registerCronSchedules(ctx, tc, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}

type cronSchedule struct {
	id       string
	cron     string
	workflow any
}

func registerCronSchedules(ctx context.Context, tc temporalclient.Client, logger zerolog.Logger) {
	schedules := []cronSchedule{
		{
			id:       "machine-sweep-cron",
			cron:     "*/5 * * * *",
			workflow: workflow.SweepMachinesWorkflow,
		},
	}

	scheduleClient := tc.ScheduleClient()

	for _, s := range schedules {
		_, err := scheduleClient.Create(ctx, temporalclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			// A sweep still running when the next one is due is not doubled up.
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
			Action: &temporalclient.ScheduleWorkflowAction{
				ID:        s.id,
				Workflow:  s.workflow,
				TaskQueue: taskQueue,
			},
		})
		if err != nil {
			if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "AlreadyExists") || strings.Contains(err.Error(), "already registered") {
				logger.Info().Str("id", s.id).Msg("cron schedule already exists, skipping")
			} else {
				logger.Fatal().Err(err).Str("id", s.id).Msg("failed to create cron schedule")
			}
		} else {
			logger.Info().Str("id", s.id).Str("cron", s.cron).Msg("created cron schedule")
		}
	}
}
