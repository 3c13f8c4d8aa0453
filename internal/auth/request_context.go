package auth

import (
	"context"
)

type contextKey string

var userClaimsKey contextKey = "user_claims"

// SetUserClaims returns a copy of ctx carrying the caller's validated claims.
// AuthMiddleware calls it once the bearer token checks out.
func SetUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims returns the claims stored by SetUserClaims, or nil on an
// unauthenticated request.
func GetUserClaims(ctx context.Context) UserClaims {
	claims, _ := ctx.Value(userClaimsKey).(UserClaims)
	return claims
}
