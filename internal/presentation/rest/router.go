package rest

import (
	"log/slog"
	"net/http"

	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
)

// RouterConfig assembles the HTTP surface. RateLimiter, JWT and Metrics are
// optional.
type RouterConfig struct {
	Assessments *AssessmentHandler
	Health      *HealthHandler
	Metrics     http.Handler
	RateLimiter *PerClientRateLimiter
	JWT         *auth.JWTService
	Logger      *slog.Logger
}

// publicPaths bypass authentication.
var publicPaths = []string{"/healthz", "/readyz", "/metrics"}

// NewRouter builds the service's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Assessments.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	mws := []Middleware{LoggingMiddleware(cfg.Logger)}
	if cfg.RateLimiter != nil {
		mws = append(mws, RateLimitMiddleware(cfg.RateLimiter))
	}
	if cfg.JWT != nil {
		mws = append(mws, auth.HTTPMiddleware(cfg.JWT, publicPaths))
	}
	return Chain(mux, mws...)
}
