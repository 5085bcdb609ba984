package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_registry_store_operations_total",
		Help: "Record store operations by operation and result",
	}, []string{"op", "result"})

	SnapshotFlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "employee_registry_snapshot_flush_failures_total",
		Help: "Durable snapshot writes that failed; memory stayed authoritative",
	})

	SnapshotFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "employee_registry_snapshot_flush_duration_seconds",
		Help:    "Latency of durable snapshot writes",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	StoredRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "employee_registry_records",
		Help: "Records currently held by the store",
	})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_registry_submissions_total",
		Help: "Form submissions by outcome",
	}, []string{"outcome"})
)
