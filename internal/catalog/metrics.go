package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot load metrics
	snapshotLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocs_catalog_loads_total",
			Help: "Total number of snapshot load attempts by result",
		},
		[]string{"result"},
	)
	snapshotLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nocs_catalog_load_duration_seconds",
			Help:    "Duration of snapshot loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)
	snapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nocs_catalog_records",
			Help: "Number of occupation records in the loaded snapshot",
		},
	)

	// Query metrics
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocs_catalog_lookups_total",
			Help: "Total number of code lookups by result",
		},
		[]string{"result"},
	)
)
