// Package procmetrics holds the process-wide metrics exposed on /metrics,
// alongside the per-request scopes internal/reqmetrics builds fresh for
// each /ping call.
//
// Grounded on the teacher pack's promauto-on-the-default-registry style
// (telemetry/global-monitor/internal/metrics/metrics.go): package-level
// vars registered once at import time via promauto, read and incremented
// throughout the process's lifetime.
package procmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPPing counts accepted /ping requests, incremented once per request
// before the session runs (spec's "accepted" means past validation, not
// past completion).
var HTTPPing = promauto.NewCounter(prometheus.CounterOpts{
	Name: "http_ping",
	Help: "Total number of accepted /ping requests.",
})

// BuildInfo reports the running binary's version metadata as a gauge
// whose value is always 1; consumers read the labels, not the value, the
// common Prometheus build-info idiom.
var BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "ping_exporter_build_info",
	Help: "Build information of the running ping-exporter binary.",
}, []string{"version", "commit", "date"})

// SetBuildInfo records version metadata once at startup.
func SetBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
}
