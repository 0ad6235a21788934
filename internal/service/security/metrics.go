package security

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetops",
		Subsystem: "security",
		Name:      "sweeps_total",
		Help:      "Total number of detection sweeps by outcome.",
	}, []string{"outcome"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fleetops",
		Subsystem: "security",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of detection sweeps.",
		Buckets:   prometheus.DefBuckets,
	})

	incidentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetops",
		Subsystem: "security",
		Name:      "incidents_created_total",
		Help:      "Total number of incidents created, by reason.",
	}, []string{"reason"})
)
