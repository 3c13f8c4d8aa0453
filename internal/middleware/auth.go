package middleware

import (
	"net/http"
	"strings"

	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/logging"
)

// AuthMiddleware validates the bearer token and stores its claims in the
// request context. A nil token service rejects every request, which keeps
// the admin API closed when no signing secret is configured.
func AuthMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				http.Error(w, "Unauthorized. Admin API disabled", http.StatusUnauthorized)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="wayfinder"`)
				http.Error(w, "Unauthorized. Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
			if err != nil {
				logging.Warn("Rejected bearer token",
					"request_id", GetRequestID(r.Context()),
					"remote_ip", clientIP(r),
					"error", err,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="wayfinder", error="invalid_token"`)
				http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
