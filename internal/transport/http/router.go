// Package httptransport mounts the REST surface and its middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"olhopix/internal/platform/metrics"
	"olhopix/internal/platform/middleware"
	"olhopix/pkg/platform/httputil"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Reports   *ReportHandler
	Validator middleware.JWTValidator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	// RequestTimeout bounds every handler; zero means 60s.
	RequestTimeout time.Duration
}

// NewRouter assembles the full HTTP surface. The attachment download stays
// public so evidence links can be shared with authorities; everything else
// under /api except register/login requires a bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/register", cfg.Auth.HandleRegister)
	r.Post("/api/login", cfg.Auth.HandleLogin)
	r.Get("/api/reports/{reportID}/attachment", cfg.Reports.HandleAttachment)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		pr.Post("/api/reports", cfg.Reports.HandleSubmit)
		pr.Get("/api/reports", cfg.Reports.HandleSearch)
		pr.Get("/api/reports/groups", cfg.Reports.HandleGroups)
	})

	return r
}
