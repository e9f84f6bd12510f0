package config

import (
	"encoding/json"
	"os"

	"github.com/avdeevsv/screenpad/internal/flagx"
	"github.com/avdeevsv/screenpad/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "3s" or
// as integer nanoseconds. Parsed values are copied into the runtime Config.
type JsonConfig struct {
	APIBaseURL          string         `json:"api_base_url"`
	AccessToken         string         `json:"access_token"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	AutosaveDebounce    timex.Duration `json:"autosave_debounce"`
	RetryMaxAttempts    uint64         `json:"retry_max_attempts"`
	RetryBaseDelay      timex.Duration `json:"retry_base_delay"`
	RetryJitterPercent  uint64         `json:"retry_jitter_percent"`
	ReplayMaxAttempts   uint64         `json:"replay_max_attempts"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. Missing flag means no JSON stage. Read or parse errors
// panic; the caller decides whether to recover.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AutosaveDebounce.Duration != 0 {
		cfg.AutosaveDebounce = jc.AutosaveDebounce.Duration
	}
	if jc.RetryMaxAttempts != 0 {
		cfg.RetryMaxAttempts = jc.RetryMaxAttempts
	}
	if jc.RetryBaseDelay.Duration != 0 {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.RetryJitterPercent != 0 {
		cfg.RetryJitterPercent = jc.RetryJitterPercent
	}
	if jc.ReplayMaxAttempts != 0 {
		cfg.ReplayMaxAttempts = jc.ReplayMaxAttempts
	}
}
