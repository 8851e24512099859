// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Trade lifecycle metrics
	TradesOpened     *prometheus.CounterVec
	TradesClosed     *prometheus.CounterVec
	TradeOpenErrors  prometheus.Counter
	TradeCloseErrors prometheus.Counter
	SimulatedBalance *prometheus.GaugeVec

	// Scoring metrics
	MetricsUpdates    prometheus.Counter
	RankingDuration   prometheus.Histogram
	SummariesReturned prometheus.Gauge

	// Market data metrics
	SnapshotFetchLatency prometheus.Histogram
	SnapshotFetchErrors  prometheus.Counter

	// Backend sync metrics
	SyncAttempts  prometheus.Counter
	SyncFailures  prometheus.Counter
	SyncAbandoned prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trust_ledger"
	}

	return &Metrics{
		TradesOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "opened_total",
			Help:      "Total number of trades opened by mode",
		}, []string{"mode"}),
		TradesClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "closed_total",
			Help:      "Total number of trades closed by mode",
		}, []string{"mode"}),
		TradeOpenErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "open_errors_total",
			Help:      "Total number of failed trade opens",
		}),
		TradeCloseErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "close_errors_total",
			Help:      "Total number of failed trade closes",
		}),
		SimulatedBalance: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "simulated_balance",
			Help:      "Current simulated token balance by token address",
		}, []string{"token"}),

		MetricsUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "metrics_updates_total",
			Help:      "Total number of recommender metrics updates",
		}),
		RankingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "ranking_duration_seconds",
			Help:      "Recommendation aggregation and ranking duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SummariesReturned: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "summaries_returned",
			Help:      "Number of token summaries returned by the last ranking run",
		}),

		SnapshotFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "snapshot_fetch_latency_seconds",
			Help:      "Market snapshot fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "snapshot_fetch_errors_total",
			Help:      "Total number of failed market snapshot fetches",
		}),

		SyncAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backendsync",
			Name:      "attempts_total",
			Help:      "Total number of backend sync HTTP attempts",
		}),
		SyncFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backendsync",
			Name:      "failures_total",
			Help:      "Total number of failed backend sync attempts",
		}),
		SyncAbandoned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backendsync",
			Name:      "abandoned_total",
			Help:      "Total number of sync payloads dropped after retry exhaustion",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
