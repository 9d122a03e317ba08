package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidBackend  = goerr.New("invalid backend")
	ErrMissingAPIKey   = goerr.New("Gemini API key is required")
	ErrMissingProject  = goerr.New("Google Cloud project ID is required")
	ErrMissingTarget   = goerr.New("target directory is required")
	ErrInvalidLogLevel = goerr.New("invalid log level")
	ErrInvalidExporter = goerr.New("invalid telemetry exporter")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	FieldKey      = "field"
	ValueKey      = "value"
)
