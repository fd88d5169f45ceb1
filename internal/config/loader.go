package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is returned by LoadConfig to aid startup debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// loaderDeps holds the injectable steps of the loader so tests can run
// without touching the working directory's .env file.
type loaderDeps struct {
	loadDotenv func(filenames ...string) error
}

func defaultDeps() loaderDeps {
	return loaderDeps{loadDotenv: godotenv.Load}
}

// LoadConfig loads and validates the configuration.
//
// The sequence is:
//  1. Set the process timezone to UTC.
//  2. Load a .env file if present. Existing environment variables win.
//  3. Populate Config from envconfig tags.
//  4. Populate Config.Build from linker-injected variables.
//  5. Validate struct tags, then cross-field rules.
func LoadConfig() (*Config, error) {
	return loadConfigWithDeps(defaultDeps())
}

func loadConfigWithDeps(deps loaderDeps) (*Config, error) {
	time.Local = time.UTC

	// A missing .env file is not an error.
	_ = deps.loadDotenv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	if err := validateCrossField(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validateCrossField(cfg *Config) error {
	if !cfg.UsesStubs() && !cfg.Database.URL.IsSet() {
		return &ConfigError{
			Type:    ErrValidation,
			Message: fmt.Sprintf("DATABASE_URL is required when APP_ENV=%s", cfg.Environment),
		}
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "DB_MIN_CONNS must not exceed DB_MAX_CONNS",
		}
	}
	if cfg.Observability.MetricsBackend == MetricsCloudWatch && cfg.Observability.MetricNamespace == "" {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "METRIC_NAMESPACE is required for the cloudwatch backend",
		}
	}
	return nil
}
