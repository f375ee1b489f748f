package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/adsadmin-backend/internal/handler"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

type RouterConfig struct {
	Registry *rpc.Registry
	Pinger   repository.Pinger
	// Realtime serves /ws; nil leaves the route out.
	Realtime http.Handler

	AllowedOrigins    []string
	RateLimitRequests int // zero disables rate limiting
	RateLimitWindow   time.Duration
}

// NewRouter mounts every HTTP route of the server.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rpcController := &RPCController{Registry: cfg.Registry}
	r.Route("/api/trpc", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.HandleFunc("/{path}", rpcController.Handle)
	})

	health := &handler.HealthHandler{Pinger: cfg.Pinger}
	r.Get("/api/health", health.Health)
	r.Get("/api/test", handler.Test)

	if cfg.Realtime != nil {
		r.Handle("/ws", cfg.Realtime)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r
}
