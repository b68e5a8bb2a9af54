package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the DKT Learn CLI.
//
// Fields:
//   - BaseURL: root of the backend REST API.
//   - SessionDB: path of the SQLite file holding the session.
//   - RequestTimeout: bound on every HTTP request.
//   - SessionTTL: lifetime of a login made without "remember me".
//   - RateLimit / RateBurst: outgoing request pacing; 0 disables it.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BaseURL        string
	SessionDB      string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
	RateLimit      float64
	RateBurst      int
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:5027"
	c.SessionDB = "session.db"
	c.RequestTimeout = 30 * time.Second
	c.SessionTTL = time.Hour
	c.RateLimit = 0
	c.RateBurst = 1
	c.LogLevel = "warn"
}

// Validate checks the settings that would otherwise fail later and less
// clearly.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL)
	}
	if c.SessionDB == "" {
		return fmt.Errorf("session_db must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if given with -c/-config) and command-line flags.
// Later sources take precedence over earlier ones. args excludes the program
// name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
