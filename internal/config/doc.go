// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It also describes the initial contents of
// the cash drawer and which change strategy the service runs.
package config
