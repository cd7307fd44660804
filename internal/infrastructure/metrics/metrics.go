package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	EntriesBooked  *prometheus.CounterVec
	EntryAmount    *prometheus.HistogramVec
	EntryErrors    *prometheus.CounterVec
	LedgerDuration prometheus.Histogram

	// Account metrics
	AccountsRegistered prometheus.Counter

	// Coin cache metrics
	QuotesUpserted prometheus.Counter
	QuotesEvicted  prometheus.Counter
	CacheLookups   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		EntriesBooked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptofolio_ledger_entries_total",
				Help: "Total ledger entries booked by type",
			},
			[]string{"type"},
		),
		EntryAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cryptofolio_ledger_entry_amount",
				Help:    "Fiat amounts of booked entries",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		EntryErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptofolio_ledger_entry_errors_total",
				Help: "Total rejected ledger operations by reason",
			},
			[]string{"reason"},
		),
		LedgerDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryptofolio_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: prometheus.DefBuckets,
		}),

		// Account metrics
		AccountsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cryptofolio_accounts_registered_total",
			Help: "Total number of accounts registered",
		}),

		// Coin cache metrics
		QuotesUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cryptofolio_quotes_upserted_total",
			Help: "Total coin quotes written to the cache",
		}),
		QuotesEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cryptofolio_quotes_evicted_total",
			Help: "Total stale coin quotes evicted",
		}),
		CacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptofolio_cache_lookups_total",
				Help: "Coin cache lookups by result",
			},
			[]string{"result"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptofolio_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cryptofolio_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptofolio_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryptofolio_active_sessions",
			Help: "Current number of active sessions",
		}),
	}
}
