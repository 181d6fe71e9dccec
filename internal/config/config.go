// Package config loads server settings from CORTEX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime settings.
type Config struct {
	Addr              string        `env:"CORTEX_ADDR" envDefault:":8080"`
	Commit            string        `env:"CORTEX_COMMIT"`
	BuildTime         string        `env:"CORTEX_BUILD_TIME"`
	CatalogPath       string        `env:"CORTEX_CATALOG_PATH"`
	AllowedOrigin     string        `env:"CORTEX_ALLOWED_ORIGIN" envDefault:"*"`
	ReadHeaderTimeout time.Duration `env:"CORTEX_READ_HEADER_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"CORTEX_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("CORTEX_ADDR must not be empty")
	}
	if c.ReadHeaderTimeout <= 0 {
		return errors.New("CORTEX_READ_HEADER_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("CORTEX_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
