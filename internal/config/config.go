// Package config defines the global configuration structure for the Seaside
// Beacon service. Configuration is loaded once at process initialization and
// is immutable thereafter, following 12-Factor principles: values come from
// the OS environment, optionally seeded from a .env file in development.
//
// Any missing required value or invalid format causes startup to fail
// immediately (fail fast).
package config

import (
	"time"

	"seasidebeacon/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the service. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"seaside-beacon"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	Insight  InsightConfig
	Email    EmailConfig
	Digest   DigestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   `envconfig:"PORT" default:"8080"`
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// WeatherConfig holds upstream weather provider credentials and tuning.
type WeatherConfig struct {
	APIKey  SecretString  `envconfig:"ACCUWEATHER_API_KEY" validate:"required"`
	BaseURL string        `envconfig:"ACCUWEATHER_BASE_URL" default:"https://dataservice.accuweather.com"`
	Timeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
}

// InsightConfig holds the generative-text provider settings. The API key is
// optional: when absent, the service runs entirely on the rule-based
// generator, which is a valid configuration state.
type InsightConfig struct {
	GeminiAPIKey SecretString  `envconfig:"GEMINI_API_KEY"`
	Model        string        `envconfig:"GEMINI_MODEL" default:"gemini-pro"`
	BaseURL      string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Timeout      time.Duration `envconfig:"INSIGHT_TIMEOUT" default:"15s"`
}

// EmailConfig holds transactional email provider credentials.
type EmailConfig struct {
	Enabled      bool         `envconfig:"EMAIL_ENABLED" default:"true"`
	BrevoAPIKey  SecretString `envconfig:"BREVO_API_KEY"`
	BrevoBaseURL string       `envconfig:"BREVO_BASE_URL" default:"https://api.brevo.com"`
	FromAddress  string       `envconfig:"EMAIL_FROM_ADDRESS" default:"hello@seasidebeacon.in"`
	FromName     string       `envconfig:"EMAIL_FROM_NAME" default:"Seaside Beacon"`
}

// DigestConfig holds the daily prediction email dispatch settings.
// SendHourIST is the civil hour (IST) at which the daily run fires.
type DigestConfig struct {
	SendHourIST int           `envconfig:"DIGEST_SEND_HOUR_IST" default:"4" validate:"min=0,max=23"`
	Concurrency int           `envconfig:"DIGEST_CONCURRENCY" default:"8" validate:"min=1"`
	PollEvery   time.Duration `envconfig:"DIGEST_POLL_INTERVAL" default:"1m"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
