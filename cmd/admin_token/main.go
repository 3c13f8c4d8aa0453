// Command admin_token issues a bearer token for the admin API, signed with
// ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/config"
	"infinite-experiment/wayfinder/internal/constants"
)

func main() {
	subject := flag.String("subject", "", "who the token is for (required)")
	role := flag.String("role", constants.RoleAdmin.String(), "token role: admin or operator")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-subject is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	tokens, err := auth.NewTokenService([]byte(cfg.AdminJWTSecret))
	if err != nil {
		log.Fatalf("ADMIN_JWT_SECRET: %v", err)
	}

	token, err := tokens.Issue(*subject, constants.Role(*role), *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
}
