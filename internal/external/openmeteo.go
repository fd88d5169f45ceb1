package external

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"trailcast/internal/types"
)

// forecastDays covers the next 24 hours from any time of day.
const forecastDays = "2"

var (
	forecastVars = strings.Join([]string{
		"temperature_2m",
		"relative_humidity_2m",
		"wind_speed_10m",
		"precipitation_probability",
		"uv_index",
		"visibility",
	}, ",")
	dailyVars = "sunrise,sunset"
)

// OpenMeteoConfig holds the endpoints for the three Open-Meteo APIs.
type OpenMeteoConfig struct {
	ForecastURL   string
	AirQualityURL string
	MarineURL     string
	UserAgent     string
	RetryPolicy   RetryPolicy
	Options       []BaseClientOption
}

// OpenMeteoClient implements WeatherProvider against Open-Meteo. Each API
// has its own breaker so a marine outage does not trip forecasts.
type OpenMeteoClient struct {
	cfg        OpenMeteoConfig
	forecast   *BaseClient
	airQuality *BaseClient
	marine     *BaseClient
}

// NewOpenMeteoClient creates an OpenMeteoClient using httpClient for all
// three APIs.
func NewOpenMeteoClient(httpClient *http.Client, cfg OpenMeteoConfig) *OpenMeteoClient {
	return &OpenMeteoClient{
		cfg:        cfg,
		forecast:   NewBaseClient(httpClient, types.ProviderForecast, cfg.RetryPolicy, cfg.UserAgent, cfg.Options...),
		airQuality: NewBaseClient(httpClient, types.ProviderAirQuality, cfg.RetryPolicy, cfg.UserAgent, cfg.Options...),
		marine:     NewBaseClient(httpClient, types.ProviderMarine, cfg.RetryPolicy, cfg.UserAgent, cfg.Options...),
	}
}

// Forecast fetches current, hourly and daily sun data.
func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	q := baseQuery(lat, lon)
	q.Set("current", forecastVars)
	q.Set("hourly", forecastVars)
	q.Set("daily", dailyVars)
	q.Set("wind_speed_unit", "kmh")

	var out Forecast
	if err := c.forecast.GetJSON(ctx, endpoint(c.cfg.ForecastURL, "/v1/forecast", q), &out); err != nil {
		return nil, withCode(err, types.ErrCodeUpstreamForecast)
	}
	return &out, nil
}

// AirQuality fetches the European AQI.
func (c *OpenMeteoClient) AirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error) {
	q := baseQuery(lat, lon)
	q.Set("current", "european_aqi")
	q.Set("hourly", "european_aqi")

	var out AirQuality
	if err := c.airQuality.GetJSON(ctx, endpoint(c.cfg.AirQualityURL, "/v1/air-quality", q), &out); err != nil {
		return nil, withCode(err, types.ErrCodeUpstreamAirQuality)
	}
	return &out, nil
}

// Marine fetches swell wave height. Inland coordinates return an upstream
// error or null readings.
func (c *OpenMeteoClient) Marine(ctx context.Context, lat, lon float64) (*Marine, error) {
	q := baseQuery(lat, lon)
	q.Set("current", "swell_wave_height")
	q.Set("hourly", "swell_wave_height")

	var out Marine
	if err := c.marine.GetJSON(ctx, endpoint(c.cfg.MarineURL, "/v1/marine", q), &out); err != nil {
		return nil, withCode(err, types.ErrCodeUpstreamMarine)
	}
	return &out, nil
}

func baseQuery(lat, lon float64) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("timezone", "auto")
	q.Set("forecast_days", forecastDays)
	return q
}

func endpoint(base, path string, q url.Values) string {
	return strings.TrimRight(base, "/") + path + "?" + q.Encode()
}

// withCode narrows a generic upstream_unavailable error to the provider's
// code, keeping rate-limit and other codes intact.
func withCode(err error, code types.ErrorCode) error {
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamUnavailable {
		return err
	}
	narrowed := *appErr
	narrowed.Code = code
	return &narrowed
}
