// Package config loads runtime configuration for the DKT Learn CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-d string   session database path
//	-t int      request timeout (seconds)
//	-r float    outgoing requests per second
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "30s" or
// integer nanoseconds:
//
//	{
//	  "base_url": "https://api.dktlearn.example",
//	  "session_db": "/home/me/.dkt/session.db",
//	  "request_timeout": "30s",
//	  "session_ttl": "1h",
//	  "rate_limit": 5,
//	  "rate_burst": 2,
//	  "log_level": "info"
//	}
//
// The same keys apply in YAML.
package config
