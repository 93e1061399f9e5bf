package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MigrationsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "schema_migrations_applied_total",
		Help: "Total number of schema migration steps applied",
	})

	MigrationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "schema_migration_duration_seconds",
		Help:    "Duration of a single schema migration step",
		Buckets: prometheus.DefBuckets,
	})

	IntegrityViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integrity_violations_total",
		Help: "Total number of writes rejected by a storage constraint",
	}, []string{"constraint"})

	MirrorDriftGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mirror_schema_drift",
		Help: "Number of differences between the declared schema and the mirrored database",
	})

	MirrorVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mirror_verifications_total",
		Help: "Total number of mirror schema verifications",
	}, []string{"result"})

	AdminChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_changes_total",
		Help: "Total number of rows changed through the admin console",
	}, []string{"entity", "operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
