// Package config defines the runtime configuration for the Trailcast API.
//
// Configuration is loaded once at process start from the environment (with an
// optional .env file for local development) and is immutable afterwards. A
// missing required value or an invalid format fails startup.
package config

import (
	"time"

	"trailcast/internal/types"
)

// SecretString is the redacted secret type used for credentials in config.
type SecretString = types.SecretString

// Environment names accepted by APP_ENV.
const (
	EnvLocal   = "local"
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Metrics backends accepted by METRICS_BACKEND.
const (
	MetricsPrometheus = "prometheus"
	MetricsCloudWatch = "cloudwatch"
	MetricsNone       = "none"
)

// Config is the top-level configuration. Components receive only the
// section they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"trailcast-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Server        ServerConfig
	Database      DatabaseConfig
	Weather       WeatherConfig
	Scoring       ScoringConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not the environment.
	Build BuildInfo
}

// UsesStubs reports whether the process should run against the in-memory
// catalog and the synthetic weather provider.
func (c *Config) UsesStubs() bool {
	return c.IsTestMode || c.Environment == EnvLocal
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s" validate:"gt=0"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"gte=0"`
}

// DatabaseConfig holds the Postgres connection and pool tuning parameters.
// URL is only required outside local and test mode.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"omitempty,url"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10" validate:"gte=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2" validate:"gte=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// WeatherConfig holds the Open-Meteo endpoints and client tuning.
type WeatherConfig struct {
	ForecastURL   string        `envconfig:"WEATHER_FORECAST_URL" default:"https://api.open-meteo.com" validate:"required,url"`
	AirQualityURL string        `envconfig:"WEATHER_AIR_QUALITY_URL" default:"https://air-quality-api.open-meteo.com" validate:"required,url"`
	MarineURL     string        `envconfig:"WEATHER_MARINE_URL" default:"https://marine-api.open-meteo.com" validate:"required,url"`
	Timeout       time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent     string        `envconfig:"WEATHER_USER_AGENT" default:"Trailcast/1.0"`
	CacheTTL      time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m" validate:"gte=0"`
}

// ScoringConfig holds outlook defaults.
type ScoringConfig struct {
	DefaultThreshold float64 `envconfig:"SCORING_DEFAULT_THRESHOLD" default:"60" validate:"gt=0,lte=100"`
	HorizonHours     int     `envconfig:"SCORING_HORIZON_HOURS" default:"24" validate:"gte=1,lte=24"`
}

// ObservabilityConfig selects and configures the metrics backend.
type ObservabilityConfig struct {
	MetricsBackend  string `envconfig:"METRICS_BACKEND" default:"prometheus" validate:"oneof=prometheus cloudwatch none"`
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Trailcast"`
	AWSRegion       string `envconfig:"AWS_REGION" default:"us-east-1"`
	// LocalStack support. Empty in production.
	AWSEndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into
	// its target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
