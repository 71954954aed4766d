package catalog

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds catalog service connection parameters.
type Config struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout string `toml:"request_timeout"`
	CandidateTTL   string `toml:"candidate_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL        string
	RequestTimeout string
	CandidateTTL   string
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// CandidateTTLDuration returns CandidateTTL as a time.Duration.
func (c *Config) CandidateTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CandidateTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.CandidateTTL != "" {
		c.CandidateTTL = overlay.CandidateTTL
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "10s"
	}
	if c.CandidateTTL == "" {
		c.CandidateTTL = "1m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.RequestTimeout != "" {
		if v := os.Getenv(env.RequestTimeout); v != "" {
			c.RequestTimeout = v
		}
	}
	if env.CandidateTTL != "" {
		if v := os.Getenv(env.CandidateTTL); v != "" {
			c.CandidateTTL = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.CandidateTTL); err != nil {
		return fmt.Errorf("invalid candidate_ttl: %w", err)
	}
	return nil
}
