// Package httpapi is the HTTP surface: query parsing and validation for
// /ping, process-wide metrics on /metrics, and the plumbing between them
// and the session coordinator.
//
// Grounded on akramer-vaportrail/internal/web/server.go's chi router
// construction (chi.NewRouter, middleware.Recoverer, a Server struct
// owning the router and its collaborators), generalized from that
// dashboard server's many JSON routes down to this spec's two plain-text
// ones.
package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/knsd/ping-exporter/internal/procmetrics"
	"github.com/knsd/ping-exporter/internal/protocol"
	"github.com/knsd/ping-exporter/internal/reqmetrics"
	"github.com/knsd/ping-exporter/internal/session"
	"github.com/knsd/ping-exporter/internal/settings"
	"github.com/knsd/ping-exporter/internal/target"
)

func durationMs(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// coordinator is the seam Server depends on instead of the concrete
// *session.Coordinator, the same pattern internal/resolver and
// internal/session use for their own collaborators so tests can drive a
// fake session outcome without a real socket or DNS resolution.
type coordinator interface {
	Run(ctx context.Context, tgt target.Target, proto protocol.Protocol, resolveTimeout, pingTimeout time.Duration, count uint) session.Report
}

// Server is the HTTP handler for the exporter's two routes.
type Server struct {
	settings    settings.Settings
	coordinator coordinator
	logger      *slog.Logger
	router      *chi.Mux
}

func New(s settings.Settings, coordinator coordinator, logger *slog.Logger) *Server {
	srv := &Server{
		settings:    s,
		coordinator: coordinator,
		logger:      logger,
		router:      chi.NewRouter(),
	}
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(logRequests(s.logger))

	s.router.Get("/ping", s.handlePing)
	s.router.Get("/ping/", s.handlePing)
	s.router.Get("/metrics", s.handleMetrics)
	s.router.Get("/metrics/", s.handleMetrics)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	req, err := parsePingRequest(r.URL.Query(), s.settings)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := validate(req, s.settings); err != nil {
		writeBadRequest(w, err)
		return
	}

	procmetrics.HTTPPing.Inc()

	report := s.coordinator.Run(
		r.Context(),
		req.target,
		req.protocol,
		durationMs(req.resolveTimeoutMs),
		durationMs(req.pingTimeoutMs),
		uint(req.count),
	)

	// A cancelled client gets no response at all (spec.md §5): outstanding
	// timers and the session's identifier are already released inside
	// Coordinator.Run/Prober.Probe by the time we get here.
	if r.Context().Err() != nil {
		return
	}

	reg := reqmetrics.Build(report, reqmetrics.Labels{
		Target:           req.rawTarget,
		Protocol:         req.protocol.String(),
		Count:            uint(req.count),
		PingTimeoutMs:    req.pingTimeoutMs,
		ResolveTimeoutMs: req.resolveTimeoutMs,
	})
	writeMetrics(w, reg)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeMetrics(w, prometheus.DefaultGatherer)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// writeMetrics serializes g's families to the text exposition format via
// expfmt (a transitive dependency of client_golang already pulled in by
// internal/reqmetrics and internal/procmetrics), buffering first so that a
// serialization failure can still produce spec.md's 500 "Internal Error"
// instead of a response with a already-written 200 status.
func writeMetrics(w http.ResponseWriter, g prometheus.Gatherer) {
	mfs, err := g.Gather()
	if err != nil {
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, format)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			http.Error(w, "Internal Error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
