// Package config provides environment-based configuration.
//
// Configuration is loaded from environment variables with sensible
// defaults, using kelseyhightower/envconfig struct tags.
//
// Configuration Sections:
//   - Server: HTTP bind host/port
//   - Store: remote store registry URL, refresh interval, request timeout
//   - Modules: installed-module directory
//   - Data: local state directory (view flags)
//   - Logging: level and development mode
//   - RateLimit: per-IP request limits
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg)
package config
