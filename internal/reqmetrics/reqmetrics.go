// Package reqmetrics builds the per-request Prometheus metric scope for one
// completed probe session.
//
// Each call gets its own *prometheus.Registry rather than reusing the
// process-wide default registry (contrast internal/procmetrics, which
// follows the teacher pack's promauto-on-the-default-registry style): the
// label set here - target, protocol, count, the two timeouts, and either
// ip or error - varies per request, and Prometheus const labels are only
// clean to attach when the collector is built fresh each time.
package reqmetrics

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/knsd/ping-exporter/internal/session"
)

// Labels carries the request-scoped label values shared by every metric in
// the scope.
type Labels struct {
	Target           string
	Protocol         string
	Count            uint
	PingTimeoutMs    uint64
	ResolveTimeoutMs uint64
}

// pingTimesBuckets covers a LAN-to-WAN RTT range in whole milliseconds,
// replacing client_golang's default (sub-second, exponential-from-5ms)
// buckets, which undersample the low end this pinger actually reports in.
var pingTimesBuckets = []float64{
	1, 2, 5, 10, 20, 50, 100, 200, 300, 500, 750, 1000, 2000, 5000,
}

// Build renders report into a fresh registry labeled per Labels, matching
// the metric names and semantics of the original implementation's
// set_metrics: ping_resolve_time, ping_resolve_error, ping_packets_total,
// ping_packets_success, ping_packets_failed, ping_packets_loss (only when
// at least one packet was sent), and the ping_times histogram.
func Build(report session.Report, l Labels) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	constLabels := prometheus.Labels{
		"target":          l.Target,
		"protocol":        l.Protocol,
		"count":           strconv.FormatUint(uint64(l.Count), 10),
		"ping_timeout":    strconv.FormatUint(l.PingTimeoutMs, 10),
		"resolve_timeout": strconv.FormatUint(l.ResolveTimeoutMs, 10),
	}
	if report.Kind == session.Success {
		constLabels["ip"] = report.Addr.String()
	} else {
		constLabels["error"] = report.Kind.String()
	}

	resolveTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ping_resolve_time",
		Help:        "Time to resolve the target, in milliseconds.",
		ConstLabels: constLabels,
	})
	resolveError := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ping_resolve_error",
		Help:        "1 if resolution failed, 0 on success.",
		ConstLabels: constLabels,
	})
	reg.MustRegister(resolveTime, resolveError)

	if report.Kind != session.Success {
		resolveError.Set(1)
		return reg
	}

	resolveTime.Set(float64(report.ResolveTime.Milliseconds()))
	resolveError.Set(0)

	pingTimes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "ping_times",
		Help:        "Round-trip times of successful pings, in milliseconds.",
		Buckets:     pingTimesBuckets,
		ConstLabels: constLabels,
	})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ping_packets_total",
		Help:        "Number of ICMP packets sent in this session.",
		ConstLabels: constLabels,
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ping_packets_success",
		Help:        "Number of ICMP packets that received a reply.",
		ConstLabels: constLabels,
	})
	failed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "ping_packets_failed",
		Help:        "Number of ICMP packets that timed out.",
		ConstLabels: constLabels,
	})
	reg.MustRegister(pingTimes, total, success, failed)

	var successCount, failedCount int
	for _, p := range report.Pings {
		if p.OK {
			pingTimes.Observe(float64(p.RTT.Milliseconds()))
			successCount++
		} else {
			failedCount++
		}
	}
	totalCount := len(report.Pings)
	total.Set(float64(totalCount))
	success.Set(float64(successCount))
	failed.Set(float64(failedCount))

	if totalCount > 0 {
		loss := prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "ping_packets_loss",
			Help:        "Percentage of packets that did not receive a reply.",
			ConstLabels: constLabels,
		})
		reg.MustRegister(loss)
		loss.Set(math.Floor(float64(failedCount) / float64(totalCount) * 100))
	}

	return reg
}
