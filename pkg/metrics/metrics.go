package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// probeTotal counts credential probes by result
	probeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aws_dashboard_probe_total",
		Help: "Credential probes by result",
	}, []string{"result"})

	// fetchTotal counts fetcher executions by resource and error kind ("ok" on success)
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aws_dashboard_fetch_total",
		Help: "Resource fetches by resource and outcome",
	}, []string{"resource", "outcome"})

	// fetchDuration tracks fetcher latency
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aws_dashboard_fetch_duration_seconds",
		Help:    "Resource fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 11), // 10ms to ~10s
	}, []string{"resource"})

	// renderTotal counts aggregations by mode and, for demo mode, the reason
	renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aws_dashboard_render_total",
		Help: "Aggregations by mode and reason",
	}, []string{"mode", "reason"})
)

func RecordProbe(ok bool) {
	result := "failed"
	if ok {
		result = "ok"
	}
	probeTotal.WithLabelValues(result).Inc()
}

// RecordFetch records one fetcher run; outcome is "ok" or the error kind
func RecordFetch(resource, outcome string, elapsed time.Duration) {
	fetchTotal.WithLabelValues(resource, outcome).Inc()
	fetchDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

func RecordLive() {
	renderTotal.WithLabelValues("live", "").Inc()
}

func RecordDemo(reason string) {
	renderTotal.WithLabelValues("demo", reason).Inc()
}
