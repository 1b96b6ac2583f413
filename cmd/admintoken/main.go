package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/middleware"
)

// Prints a bearer token for the catalog maintenance routes.
func main() {
	subject := flag.String("subject", "ops", "Token subject recorded in request logs")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.AdminJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := middleware.NewAdminTokens(cfg.AdminJWTSecret).Generate(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
