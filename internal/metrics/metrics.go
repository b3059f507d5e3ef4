package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run-level counters and gauges. Destination-scoped metrics are
// partitioned by destination name.

var (
	AccountsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "source",
		Name:      "accounts_ingested_total",
		Help:      "New level-0 accounts observed by the source reader",
	})

	AccountsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "promote",
		Name:      "accounts_promoted_total",
		Help:      "Matured accounts marked consumed in the tracking store",
	})

	AccountsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "distribute",
		Name:      "accounts_routed_total",
		Help:      "Matured accounts inserted into each destination store",
	}, []string{"destination"})

	DestinationInsertErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "distribute",
		Name:      "insert_errors_total",
		Help:      "Failed destination insert operations",
	}, []string{"destination"})

	DestinationMatured = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "leveler",
		Subsystem: "report",
		Name:      "matured_accounts",
		Help:      "Cumulative matured accounts per destination at run end",
	}, []string{"destination"})

	WebhookFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "report",
		Name:      "webhook_failures_total",
		Help:      "Webhook deliveries that failed or returned non-2xx",
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leveler",
		Subsystem: "run",
		Name:      "runs_total",
		Help:      "Completed runs by status",
	}, []string{"status"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "leveler",
		Subsystem: "run",
		Name:      "duration_seconds",
		Help:      "End-to-end run duration",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
