package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/wayfinder/internal/api"
	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/config"
	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/middleware"
)

// RouterDeps is everything the router wires into handlers and middleware.
type RouterDeps struct {
	API      *api.Dependencies
	Gatherer prometheus.Gatherer
	SQL      *sqlx.DB
	Redis    *redis.Client      // nil unless the redis durable backend is in use
	Tokens   *auth.TokenService // nil keeps the admin API closed
}

func RegisterRoutes(cfg config.Config, d RouterDeps, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(chimw.Recoverer)
	if d.API.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(d.API.Metrics))
	}
	if cfg.AppEnv != "production" {
		r.Use(middleware.Logging)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(d.SQL, d.Redis, upSince))

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	handlers := api.NewHandlers(d.API)
	limiter := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, "127.0.0.1", "::1")

	RegisterAPIRoutes(r, handlers, limiter, d.Tokens)

	logging.Info("Router initialized",
		"rate_rps", cfg.RateRPS,
		"rate_burst", cfg.RateBurst,
		"admin_api", d.Tokens != nil,
	)
	return r
}
