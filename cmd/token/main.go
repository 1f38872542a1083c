// token prints a bearer token for calling the protected posts endpoints
// during development. It signs with the same configuration the server
// loads, so JWT_SECRET (or the config file) must be set.
//
// Usage:
//
//	token --id user-1 --username alice
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/UkralStul/blog-posts-service/internal/auth"
	"github.com/UkralStul/blog-posts-service/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", os.Getenv("BLOG_CONFIG"), "path to YAML config file")
	id := pflag.String("id", "", "user id to embed in the token (required)")
	username := pflag.String("username", "", "username to embed in the token")
	ttl := pflag.Duration("ttl", 0, "token lifetime (defaults to the configured TTL)")
	pflag.Parse()

	if err := run(*configPath, *id, *username, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, id, username string, ttl time.Duration) error {
	if id == "" {
		return errors.New("--id is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = cfg.Auth.TokenTTL
	}

	issuer, err := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), ttl)
	if err != nil {
		return err
	}
	token, err := issuer.Sign(auth.Identity{ID: id, Username: username})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
