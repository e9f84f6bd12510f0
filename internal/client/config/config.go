// Package config assembles runtime settings for the screenpad client.
// Sources are applied in order (defaults, .env file / environment, JSON
// config file, command-line flags) with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the screenpad client.
type Config struct {
	// APIBaseURL is the base URL of the remote store's HTTP API.
	APIBaseURL string
	// AccessToken is the externally issued token the identity is derived
	// from; empty means anonymous.
	AccessToken string
	// DatabasePath is the local SQLite file backing the outbox and cache.
	DatabasePath string

	// OnlineCheckInterval is how often the client probes store reachability.
	OnlineCheckInterval time.Duration
	// AutosaveDebounce is the quiet period after the last edit before a
	// background write fires.
	AutosaveDebounce time.Duration

	// RetryMaxAttempts bounds attempts per remote call, first try included.
	RetryMaxAttempts uint64
	// RetryBaseDelay seeds the exponential backoff between attempts.
	RetryBaseDelay time.Duration
	// RetryJitterPercent randomizes each backoff delay by ±percent.
	RetryJitterPercent uint64
	// ReplayMaxAttempts bounds attempts per queued item during replay.
	ReplayMaxAttempts uint64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "screenpad.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.AutosaveDebounce = 800 * time.Millisecond
	c.RetryMaxAttempts = 4
	c.RetryBaseDelay = 250 * time.Millisecond
	c.RetryJitterPercent = 20
	c.ReplayMaxAttempts = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
