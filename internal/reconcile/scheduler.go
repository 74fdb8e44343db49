// Package reconcile runs the periodic machine sweeps inside the API
// process.
package reconcile

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/core"
)

// DefaultInterval matches the production sweep cadence.
const DefaultInterval = 5 * time.Minute

// ErrAlreadyRunning is returned by Run while another Run is active.
var ErrAlreadyRunning = errors.New("scheduler already running")

var (
	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "machine_sweep_pass_duration_seconds",
		Help:    "Duration of each sweep pass",
		Buckets: prometheus.DefBuckets,
	})
	passTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "machine_sweep_passes_total",
		Help: "Sweep passes by result",
	}, []string{"result"})
)

// Sweeper performs the two sweeps of a pass.
type Sweeper interface {
	SweepOrphanedNetworking(ctx context.Context) (core.SweepResult, error)
	SweepExpired(ctx context.Context) (core.SweepResult, error)
}

// Scheduler runs a sweep pass immediately and then every interval.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   zerolog.Logger
	running  atomic.Bool
}

func NewScheduler(sweeper Sweeper, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With().Str("component", "sweep-scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled. A pass in flight when ctx is
// cancelled completes before Run returns. Run may be called again after
// it has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.logger.Info().Dur("interval", s.interval).Msg("starting sweep loop")
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweep loop stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one pass: networking cleanup first, then expiry.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	defer func() { passDuration.Observe(time.Since(start).Seconds()) }()

	result := "success"
	net, err := s.sweeper.SweepOrphanedNetworking(ctx)
	if err != nil {
		result = "error"
		s.logger.Error().Err(err).Msg("networking sweep failed")
	}
	expired, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		result = "error"
		s.logger.Error().Err(err).Msg("expiry sweep failed")
	}
	passTotal.WithLabelValues(result).Inc()

	s.logger.Info().
		Int("networking_processed", net.Processed).
		Int("networking_failed", net.Failed).
		Int("expired_processed", expired.Processed).
		Int("expired_failed", expired.Failed).
		Dur("duration", time.Since(start)).
		Msg("sweep pass complete")
}
