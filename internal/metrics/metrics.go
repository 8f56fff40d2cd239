package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks inbound API requests served by the adapter.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_api_requests_total",
			Help: "Total number of API requests served (by endpoint, method and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Tracks upstream fetches against the two data sources.
	UpstreamFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etf_upstream_fetch_total",
			Help: "Total number of upstream fetches (by source and result).",
		},
		[]string{"source", "result"}, // source = "fundamentals" | "realtime"; result = "ok" | "error"
	)

	// Measures duration of upstream fetches.
	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etf_upstream_fetch_duration_seconds",
			Help:    "Duration of upstream fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"source"},
	)

	// Counts batches whose realtime overlay was skipped after a feed failure.
	OverlayFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etf_realtime_overlay_failures_total",
			Help: "Number of request batches that fell back to fundamentals prices.",
		},
	)

	// Tracks NATS messages published by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages processed.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	// Measures time taken to publish NATS messages.
	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_errors_total",
			Help: "Count of adapter-level errors by component.",
		},
		[]string{"component", "reason"},
	)

	// Gauges the last successful watchlist refresh (seconds since epoch).
	LastRefreshTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adapter_last_refresh_timestamp",
			Help: "Timestamp (unix seconds) of the last successful watchlist refresh.",
		},
		[]string{"component"},
	)

	// Gauges currently connected websocket clients.
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "etf_ws_clients",
			Help: "Number of connected websocket subscribers.",
		},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncAPIRequest(endpoint, method, status string) {
	APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

func IncUpstreamFetch(source, result string) {
	UpstreamFetchTotal.WithLabelValues(source, result).Inc()
}

func IncOverlayFailure() {
	OverlayFailuresTotal.Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func SetLastRefresh(component string, t time.Time) {
	LastRefreshTimestamp.WithLabelValues(component).Set(float64(t.Unix()))
}

func AddWSClient() {
	WSClients.Inc()
}

func RemoveWSClient() {
	WSClients.Dec()
}
