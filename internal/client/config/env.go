package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment. A
// .env file in the working directory is loaded first when present; real
// environment variables win over the file, which is godotenv's default.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SCREENPAD_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("SCREENPAD_ACCESS_TOKEN"); v != "" {
		cfg.AccessToken = v
	}
	if v := os.Getenv("SCREENPAD_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SCREENPAD_ONLINE_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
	if v := os.Getenv("SCREENPAD_AUTOSAVE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AutosaveDebounce = d
		}
	}
	if v := os.Getenv("SCREENPAD_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			cfg.RetryMaxAttempts = n
		}
	}
	if v := os.Getenv("SCREENPAD_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryBaseDelay = d
		}
	}
	if v := os.Getenv("SCREENPAD_RETRY_JITTER_PERCENT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.RetryJitterPercent = n
		}
	}
	if v := os.Getenv("SCREENPAD_REPLAY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			cfg.ReplayMaxAttempts = n
		}
	}
}
