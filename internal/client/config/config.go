package config

import "time"

// Config holds runtime settings for the Shopkeeper CLI.
//
// Fields:
//   - BaseURL: base URL of the backend REST API.
//   - DataDir: directory holding the local session database and key file.
//   - RequestTimeout: upper bound for every HTTP exchange.
//   - RefreshTimeout: upper bound for the token refresh exchange.
//
// Units: timeouts are time.Duration values (e.g., 15*time.Second).
type Config struct {
	BaseURL        string
	DataDir        string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.DataDir = ".shopkeeper"
	c.RequestTimeout = 15 * time.Second
	c.RefreshTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
