// Package config loads runtime configuration for the Shopkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-d string   directory for the local session database and key file
//	-t int      per-request timeout (seconds)
//	-r int      token refresh timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "15s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://api.shopline.example",
//	  "data_dir": "/home/alice/.shopkeeper",
//	  "request_timeout": "15s",
//	  "refresh_timeout": "10s"
//	}
//
// Primary API
//
//   - type Config                     — holds the base URL, data dir, and timeouts
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
