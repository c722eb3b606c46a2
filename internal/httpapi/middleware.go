package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logRequests emits exactly one line per completed request in the form
// "METHOD PATH?QUERY ELAPSED_ms", spec.md §4.5's required log shape. The
// teacher pack's chi usage reaches for middleware.Logger, but its default
// format doesn't match that line shape, so this is a small bespoke
// middleware in the same wrap-the-ResponseWriter style middleware.Logger
// itself uses (via middleware.WrapResponseWriter).
func logRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			line := r.Method + " " + r.URL.Path
			if r.URL.RawQuery != "" {
				line += "?" + r.URL.RawQuery
			}
			line += " " + strconv.FormatInt(elapsed.Milliseconds(), 10) + "ms"
			logger.Info(line, "status", ww.Status())
		})
	}
}
