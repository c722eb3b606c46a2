package procmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHTTPPingIncrements(t *testing.T) {
	before := gatherValue(t, "http_ping")
	HTTPPing.Inc()
	after := gatherValue(t, "http_ping")
	if after != before+1 {
		t.Errorf("http_ping = %v after Inc; want %v", after, before+1)
	}
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("1.2.3", "abcdef", "2026-07-30")

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "ping_exporter_build_info" {
			continue
		}
		for _, m := range mf.Metric {
			labels := map[string]string{}
			for _, lbl := range m.Label {
				labels[lbl.GetName()] = lbl.GetValue()
			}
			if labels["version"] == "1.2.3" && labels["commit"] == "abcdef" {
				return
			}
		}
	}
	t.Error("ping_exporter_build_info not found with expected labels")
}

func gatherValue(t *testing.T, name string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.Metric[0].GetCounter().GetValue()
		}
	}
	return 0
}
