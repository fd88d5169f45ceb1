package external

import (
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/gzhttp"

	"trailcast/internal/config"
)

// ClientRegistry holds the external clients the application uses.
type ClientRegistry struct {
	Weather WeatherProvider
}

// NewClientRegistry builds the registry. Local and test mode get the
// synthetic stub provider; other environments talk to Open-Meteo.
func NewClientRegistry(cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) *ClientRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.UsesStubs() {
		logger.Info("initializing external clients in STUB mode",
			"is_test_mode", cfg.IsTestMode,
			"environment", cfg.Environment,
		)
		return &ClientRegistry{
			Weather: NewStubWeatherProvider(clock, logger.With("mode", "stub")),
		}
	}

	logger.Info("initializing external clients in PRODUCTION mode",
		"environment", cfg.Environment,
	)
	// Open-Meteo responses are large JSON arrays; ask for gzip.
	httpClient := &http.Client{
		Timeout:   cfg.Weather.Timeout,
		Transport: gzhttp.Transport(http.DefaultTransport),
	}
	return &ClientRegistry{
		Weather: NewOpenMeteoClient(httpClient, OpenMeteoConfig{
			ForecastURL:   cfg.Weather.ForecastURL,
			AirQualityURL: cfg.Weather.AirQualityURL,
			MarineURL:     cfg.Weather.MarineURL,
			UserAgent:     cfg.Weather.UserAgent,
			RetryPolicy:   DefaultRetryPolicy(),
		}),
	}
}
