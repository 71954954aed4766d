package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/lectern/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "LECTERN_CORS_ENABLED",
	Origins:          "LECTERN_CORS_ORIGINS",
	AllowedMethods:   "LECTERN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "LECTERN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "LECTERN_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "LECTERN_CORS_MAX_AGE",
}

// APIConfig holds API routing and CORS settings.
type APIConfig struct {
	BasePath string                `toml:"base_path"`
	CORS     middleware.CORSConfig `toml:"cors"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("LECTERN_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
}
