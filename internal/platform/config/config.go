// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into strongly-typed
Go structs, providing early validation and default values.

Usage:

	cfg, err := config.LoadClient()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (Store, Provider, Emulator) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// # Client Configuration

// Client holds runtime configuration for the Canvio CLI client.
type Client struct {

	// APIBaseURL is the base URL of the identity/profile/canvas backend.
	// Defaults to the local emulator.
	APIBaseURL string `env:"CANVIO_API_URL" envDefault:"http://localhost:9099"`

	// StateDir is the directory where the session snapshot is persisted.
	// Empty means "<user config dir>/canvio".
	StateDir string `env:"CANVIO_STATE_DIR"`

	// Federated (Google) sign-in settings.
	OIDCIssuer         string `env:"CANVIO_OIDC_ISSUER"     envDefault:"https://accounts.google.com"`
	GoogleClientID     string `env:"CANVIO_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"CANVIO_GOOGLE_CLIENT_SECRET"`

	// OAuthCallbackPort is the loopback port used to catch the federated
	// sign-in redirect (the CLI analogue of a browser popup).
	OAuthCallbackPort int `env:"CANVIO_OAUTH_CALLBACK_PORT" envDefault:"8935"`

	Debug bool `env:"CANVIO_DEBUG" envDefault:"false"`
}

// LoadClient parses environment variables into a [Client] struct.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: cannot resolve user config dir: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "canvio")
	}

	return cfg, nil
}

// # Emulator Configuration

// Emulator holds runtime configuration for the local backend emulator.
type Emulator struct {

	// Server settings
	ServerPort  string `env:"EMULATOR_PORT" envDefault:"9099"`
	Environment string `env:"ENVIRONMENT"   envDefault:"development"`
	Debug       bool   `env:"DEBUG"         envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// SessionSecret signs issued ID tokens (HS256).
	SessionSecret string `env:"SESSION_SECRET,required"`
}

// LoadEmulator parses environment variables into an [Emulator] struct.
func LoadEmulator() (*Emulator, error) {
	cfg := &Emulator{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the emulator is running in development mode.
func (c *Emulator) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the emulator is running in production mode.
func (c *Emulator) IsProduction() bool {
	return c.Environment == "production"
}
