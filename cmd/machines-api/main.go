package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/machines/internal/api"
	"github.com/edvin/machines/internal/app"
	"github.com/edvin/machines/internal/config"
	"github.com/edvin/machines/internal/core"
	"github.com/edvin/machines/internal/db"
	"github.com/edvin/machines/internal/logging"
	"github.com/edvin/machines/internal/metrics"
	"github.com/edvin/machines/internal/reconcile"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "create-api-key" {
		createAPIKey(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "machines-api"
	}

	if err := cfg.Validate("machines-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		version, err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Int64("version", version).Msg("database migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	srv := api.NewServer(logger, api.Services{
		Machines:    rt.Services.Machine,
		Definitions: rt.Services.Definition,
		Gate:        rt.Services.Gate,
		APIKeys:     rt.Services.APIKey,
		Ready:       pool.Ping,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.OrchestratorTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting machines API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr, pool.Ping)
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return metricsSrv.Close()
		})
	}

	if cfg.Scheduler == config.SchedulerInProcess {
		scheduler := reconcile.NewScheduler(rt.Services.Machine, cfg.SweepInterval, logger)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	} else {
		logger.Info().Msg("sweeps delegated to the temporal schedule")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("machines API stopped")
	}
}

func createAPIKey(args []string) {
	fs := flag.NewFlagSet("create-api-key", flag.ExitOnError)
	name := fs.String("name", "", "Name for the API key (required)")
	scopes := fs.String("scopes", "machines", "Comma-separated scopes (machines, admin)")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		fmt.Fprintln(os.Stderr, "usage: machines-api create-api-key --name <name> [--scopes machines,admin]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewAPIKeyService(pool)
	key, rawKey, err := svc.Create(ctx, *name, strings.Split(*scopes, ","))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key created successfully.\n\n")
	fmt.Printf("  Name:   %s\n", key.Name)
	fmt.Printf("  ID:     %s\n", key.ID)
	fmt.Printf("  Scopes: %s\n", strings.Join(key.Scopes, ","))
	fmt.Printf("  Key:    %s\n\n", rawKey)
	fmt.Printf("Save this key, it will not be shown again.\n")
}
