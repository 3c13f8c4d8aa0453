package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"infinite-experiment/wayfinder/internal/constants"
)

// UserClaims is what handlers and middleware read from the request context.
type UserClaims interface {
	UserID() string
	Role() string
	Source() string
}

// JWTClaims is the payload of an admin bearer token.
type JWTClaims struct {
	jwt.RegisteredClaims
	RoleValue constants.Role `json:"role"`
}

func (c *JWTClaims) UserID() string { return c.Subject }
func (c *JWTClaims) Role() string   { return c.RoleValue.String() }
func (c *JWTClaims) Source() string { return "JWT" }
