// Package httptransport assembles the HTTP surface: middleware chain, public
// endpoints, and the authenticated API. Handlers stay in their feature
// packages; this package only wires them together.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "custodia/internal/access/handler"
	authhandler "custodia/internal/auth/handler"
	"custodia/internal/platform/metrics"
	reportinghandler "custodia/internal/reporting/handler"
	"custodia/internal/ratelimit"
	"custodia/pkg/platform/middleware/auth"
	"custodia/pkg/platform/middleware/metadata"
	"custodia/pkg/platform/middleware/request"
	"custodia/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	TokenValidator auth.TokenValidator
	AuthHandler    *authhandler.Handler
	AccessHandler  *accesshandler.Handler
	ReportHandler  *reportinghandler.Handler
	RateLimit      *ratelimit.Middleware
	HTTPMetrics    *metrics.HTTPMetrics
	// Health reports readiness of backing services. Nil checks are skipped.
	Health []func() error
}

// NewRouter builds the full middleware chain and mounts all endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(deps.HTTPMetrics.Middleware)
	if deps.RateLimit != nil {
		r.Use(deps.RateLimit.Handler)
	}
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	deps.AuthHandler.Register(r)

	r.Group(func(api chi.Router) {
		api.Use(auth.RequireAuth(deps.TokenValidator, deps.Logger))
		deps.AccessHandler.Register(api)
		if deps.ReportHandler != nil {
			deps.ReportHandler.Register(api)
		}
	})

	return r
}

func healthHandler(checks []func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
