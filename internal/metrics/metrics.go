// Package metrics provides the Prometheus registry for the stake calculator.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stake_calculator"

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	StakeCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stake_calculations_total",
		Help:      "Total number of stake recommendations by kind and no-bet reason",
	}, []string{"kind", "reason"})
	OddsConversionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_conversions_total",
		Help:      "Total number of American to decimal odds conversions",
	}, []string{"result"})
	EmpiricalLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "empirical_lookups_total",
		Help:      "Total number of empirical info lookups by source and result",
	}, []string{"source", "result"})
	EmpiricalCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "empirical_cache_total",
		Help:      "Empirical summary cache hits and misses",
	}, []string{"result"})
	BetSlipsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bet_slips_total",
		Help:      "Total number of bet form submissions by result",
	}, []string{"result"})
)

// Histogram metrics
var (
	EmpiricalLookupDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "empirical_lookup_duration_seconds",
		Help:      "Duration of empirical info lookups in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(StakeCalculationsTotal)
		registry.MustRegister(OddsConversionsTotal)
		registry.MustRegister(EmpiricalLookupsTotal)
		registry.MustRegister(EmpiricalCacheTotal)
		registry.MustRegister(BetSlipsTotal)
		registry.MustRegister(EmpiricalLookupDuration)
	})
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}

// RecordStakeCalculation records a stake recommendation.
func RecordStakeCalculation(kind, reason string) {
	if reason == "" {
		reason = "none"
	}
	StakeCalculationsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordOddsConversion records an odds conversion attempt.
func RecordOddsConversion(ok bool) {
	result := "ok"
	if !ok {
		result = "invalid"
	}
	OddsConversionsTotal.WithLabelValues(result).Inc()
}

// RecordEmpiricalLookup records an empirical lookup and its latency.
func RecordEmpiricalLookup(source, result string, elapsed time.Duration) {
	EmpiricalLookupsTotal.WithLabelValues(source, result).Inc()
	EmpiricalLookupDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordCache records an empirical summary cache hit or miss.
func RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EmpiricalCacheTotal.WithLabelValues(result).Inc()
}

// RecordBetSlip records a bet form submission.
func RecordBetSlip(accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	BetSlipsTotal.WithLabelValues(result).Inc()
}
