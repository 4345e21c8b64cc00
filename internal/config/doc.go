// Package config loads and validates runtime configuration for wz-channels.
//
// Configuration is read from `config/config.yaml` and can be overridden via
// WZC_-prefixed environment variables (see `internal/config/config.go` for
// keys). GITHUB_TOKEN is honored for github.token.
package config
