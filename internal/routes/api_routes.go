package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/wayfinder/internal/api"
	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, limiter *middleware.RateLimiter, tokens *auth.TokenService) {

	r.Route("/api/v1", func(v1 chi.Router) {

		// Public lookup surface, rate limited per client IP
		v1.Group(func(public chi.Router) {
			public.Use(limiter.Middleware)

			public.Get("/locations/lookup", handlers.LookupLocation())
			public.Get("/locations/resolve", handlers.ResolveAirportCode())
			public.Get("/locations/info", handlers.GetAirportInfo())
			public.Get("/locations/can-resolve", handlers.CanResolve())
			public.Get("/locations/stats", handlers.GetLookupStats())
		})

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.AuthMiddleware(tokens))
			admin.Use(middleware.IsAdminMiddleware())

			admin.Delete("/admin/locations/cache", handlers.ClearLocationCache())
			admin.Delete("/admin/locations/durable-cache", handlers.ClearDurableCache())

			// Location dataset management
			admin.Post("/admin/data/sync-airports", handlers.SyncAirports())
		})
	})
}
