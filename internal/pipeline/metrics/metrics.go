package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts tracks quota-charged vendor calls per endpoint
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_fetch_attempts_total",
			Help: "Total number of vendor API attempts",
		},
		[]string{"endpoint"},
	)

	// FetchFailures tracks failed logical fetches per failure kind
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_fetch_failures_total",
			Help: "Total number of failed fetches",
		},
		[]string{"kind"},
	)

	// RateLimitWait tracks time spent waiting for quota headroom
	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_rate_limit_wait_seconds",
			Help:    "Time spent blocked in the rate limiter",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	// SymbolsProcessed tracks per-symbol terminal outcomes
	SymbolsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_symbols_processed_total",
			Help: "Total symbols processed by terminal outcome",
		},
		[]string{"outcome"},
	)

	// ValidationViolations tracks violations per pass and severity
	ValidationViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_validation_violations_total",
			Help: "Total validation violations found",
		},
		[]string{"pass", "severity"},
	)

	// RecordsFetched tracks accepted OHLCV rows
	RecordsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_records_fetched_total",
			Help: "Total OHLCV rows fetched successfully",
		},
	)

	// ProviderFailovers counts fallback switches away from a provider
	ProviderFailovers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_provider_failovers_total",
			Help: "Total fetches handed to the next provider in the chain",
		},
		[]string{"provider"},
	)

	// QuotaRemaining exposes per-window headroom
	QuotaRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "collector_quota_remaining",
			Help: "Remaining calls in each quota window",
		},
		[]string{"window"},
	)
)
