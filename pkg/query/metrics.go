package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts which retrieval strategies actually served requests.
type Metrics struct {
	requests  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the search metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphlift",
				Name:      "search_requests_total",
				Help:      "Searches served, by the strategy that produced the results",
			},
			[]string{"strategy"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphlift",
				Name:      "search_fallbacks_total",
				Help:      "Semantic searches that fell back to keyword matching, by reason",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "graphlift",
				Name:      "search_duration_seconds",
				Help:      "Search latency by strategy",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.fallbacks, m.duration)
	}
	return m
}

func (m *Metrics) observe(strategy Strategy, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(strategy)).Inc()
	m.duration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) fallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}
