package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/causeway/internal/adapter/api/handler"
	"github.com/V4T54L/causeway/internal/adapter/api/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewAdminRouter creates the router for the admin port: Prometheus metrics,
// dependency health and WAL operations.
func NewAdminRouter(admin *handler.AdminHandler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", admin.HealthCheck)
	mux.HandleFunc("GET /admin/wal", admin.WALStatus)
	mux.HandleFunc("POST /admin/wal/replay", admin.ReplayWAL)

	return middleware.Logging(logger)(mux)
}
