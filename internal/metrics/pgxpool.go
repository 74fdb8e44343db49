package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the subset of pgxpool.Pool the gauges read.
type PoolStats interface {
	Stat() *pgxpool.Stat
}

// RegisterPgxPoolMetrics exposes connection pool statistics of the
// machines database as Prometheus gauges on reg.
func RegisterPgxPoolMetrics(reg prometheus.Registerer, pool PoolStats) {
	gauge := func(name, help string, read func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "machines",
			Subsystem: "pgxpool",
			Name:      name,
			Help:      help,
		}, func() float64 { return read(pool.Stat()) })
	}

	reg.MustRegister(
		gauge("acquired_conns", "Number of currently acquired connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("max_conns", "Maximum number of connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
		gauge("total_conns", "Total number of connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("idle_conns", "Number of idle connections in the pool",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
	)
}
