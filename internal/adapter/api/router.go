package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/causeway/internal/adapter/api/handler"
	"github.com/V4T54L/causeway/internal/adapter/api/middleware"
	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/pkg/config"
)

// NewRouter creates the public HTTP router. Every route except /health
// requires an API key and is rate limited per client.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	apiKeyRepo domain.APIKeyRepository,
	executions handler.ExecutionIngester,
	views handler.ViewAnalyzer,
) http.Handler {
	mux := http.NewServeMux()

	executionHandler := handler.NewExecutionHandler(executions, logger, cfg.MaxUploadBytes)
	viewHandler := handler.NewViewHandler(views, logger, cfg.MaxUploadBytes)

	auth := middleware.Auth(apiKeyRepo, logger)
	limit := middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), logger)
	protect := func(h http.HandlerFunc) http.Handler { return limit(auth(h)) }

	mux.Handle("POST /executions", protect(executionHandler.Create))
	mux.Handle("GET /executions/{id}", protect(executionHandler.Get))
	mux.Handle("POST /executions/{id}/view", protect(viewHandler.View))
	mux.Handle("POST /view", protect(viewHandler.ViewInline))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return middleware.Logging(logger)(mux)
}
