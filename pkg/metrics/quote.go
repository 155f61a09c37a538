package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics records pricing-resolution outcomes for the quote pipeline.
type QuoteMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	tierMiss  *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_resolution_duration_seconds",
		Help:    "Duration of quote price resolution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_resolution_success",
		Help: "Successful quote resolutions.",
	}, []string{"mode"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_resolution_failure",
		Help: "Failed quote resolutions.",
	}, []string{"mode"})
	tierMiss := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_tier_miss",
		Help: "Quote resolutions where no pricing tier matched.",
	}, []string{"mode"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_cache_hits",
		Help: "Quote resolutions served from cache.",
	}, []string{"mode"})
	reg.MustRegister(duration, success, failure, tierMiss, cacheHits)
	return &QuoteMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		tierMiss:  tierMiss,
		cacheHits: cacheHits,
	}
}

// ObserveDuration records the resolution duration for the pricing mode.
func (q *QuoteMetrics) ObserveDuration(mode string, duration time.Duration) {
	if q == nil || q.duration == nil {
		return
	}
	q.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the pricing mode.
func (q *QuoteMetrics) IncSuccess(mode string) {
	if q == nil || q.success == nil {
		return
	}
	q.success.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailure increments the failure counter for the pricing mode.
func (q *QuoteMetrics) IncFailure(mode string) {
	if q == nil || q.failure == nil {
		return
	}
	q.failure.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncTierMiss increments the no-tier-match counter for the pricing mode.
func (q *QuoteMetrics) IncTierMiss(mode string) {
	if q == nil || q.tierMiss == nil {
		return
	}
	q.tierMiss.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncCacheHit increments the cache-hit counter for the pricing mode.
func (q *QuoteMetrics) IncCacheHit(mode string) {
	if q == nil || q.cacheHits == nil {
		return
	}
	q.cacheHits.WithLabelValues(normalizeLabel(mode)).Inc()
}

func normalizeLabel(mode string) string {
	if mode == "" {
		return "unknown"
	}
	return mode
}
