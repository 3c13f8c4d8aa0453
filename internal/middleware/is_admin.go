package middleware

import (
	"net/http"

	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/constants"
)

func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if claims.Role() != constants.RoleAdmin.String() {
				http.Error(w, "Forbidden. Need admin role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
