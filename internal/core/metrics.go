package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	machineOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machine_operations_total",
			Help: "Machine lifecycle operations by outcome",
		},
		[]string{"op", "result"},
	)

	sweepRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machine_sweep_records_total",
			Help: "Records handled by the reconciliation sweeps",
		},
		[]string{"sweep", "result"},
	)

	statusCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machine_status_cache_total",
			Help: "Status cache lookups on refresh",
		},
		[]string{"result"},
	)
)
