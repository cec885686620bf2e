package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "occupancy"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	calendarLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_loads_total",
			Help:      "Calendar loads by source and result.",
		},
		[]string{"source", "result"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Time spent fetching bookings upstream.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	records = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Upstream records by normalization outcome.",
		},
		[]string{"outcome"},
	)

	layoutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent laying out one calendar.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	relayouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayouts_total",
			Help:      "Debounced re-layout passes by outcome (applied or discarded).",
		},
		[]string{"outcome"},
	)

	liveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Calendar sessions held in memory.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, calendarLoads, fetchDuration, records, layoutDuration, relayouts, liveSessions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func ObserveLoad(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "fetch_failed"
	}
	calendarLoads.WithLabelValues(source, result).Inc()
}

func ObserveFetch(source string, d time.Duration) {
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

func ObserveRecords(accepted, rejected, duplicates int) {
	records.WithLabelValues("accepted").Add(float64(accepted))
	records.WithLabelValues("rejected").Add(float64(rejected))
	records.WithLabelValues("duplicate").Add(float64(duplicates))
}

func ObserveLayout(d time.Duration) {
	layoutDuration.Observe(d.Seconds())
}

func IncRelayout(applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "discarded"
	}
	relayouts.WithLabelValues(outcome).Inc()
}

func SetLiveSessions(n int) {
	liveSessions.Set(float64(n))
}
