// Command ping-exporter serves ICMP ping results as Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"github.com/knsd/ping-exporter/internal/httpapi"
	"github.com/knsd/ping-exporter/internal/procmetrics"
	"github.com/knsd/ping-exporter/internal/prober"
	"github.com/knsd/ping-exporter/internal/resolver"
	"github.com/knsd/ping-exporter/internal/session"
	"github.com/knsd/ping-exporter/internal/settings"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var printVersion = flag.BoolP("version", "v", false, "Print version information and exit.")

func main() {
	flag.Parse()

	if *printVersion {
		fmt.Printf("ping-exporter %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	os.Exit(run())
}

// run contains the whole startup/serve/shutdown sequence so main can keep
// its os.Exit call isolated at the top level, the shape the teacher's own
// command entry points use.
func run() int {
	logger := newLogger()

	s, err := settings.FromEnv()
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		return 1
	}
	logger.Info("starting ping-exporter", "settings", s.String())

	procmetrics.SetBuildInfo(version, commit, date)

	res, err := resolver.New(s.Resolver, s.HasResolver)
	if err != nil {
		logger.Error("failed to initialize resolver", "error", err)
		return 1
	}

	prb, err := prober.New()
	if err != nil {
		logger.Error("failed to initialize ICMP prober", "error", err)
		return 1
	}
	defer prb.Close()

	coordinator := session.New(res, prb)
	server := httpapi.New(s, coordinator, logger)

	httpServer := &http.Server{
		Addr:    s.Listen,
		Handler: server,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", s.Listen)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}

func newLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelInfo,
	}))
}
