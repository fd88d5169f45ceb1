package external

import "context"

// WeatherProvider fetches raw weather data for a coordinate. The forecast is
// required; air quality and marine data are supplementary and callers treat
// their failure as missing readings.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (*Forecast, error)
	AirQuality(ctx context.Context, lat, lon float64) (*AirQuality, error)
	Marine(ctx context.Context, lat, lon float64) (*Marine, error)
}

// Forecast is the subset of the Open-Meteo forecast response the service
// reads. Times are local to the location, formatted "2006-01-02T15:04", with
// UTCOffsetSeconds giving the zone. Nullable readings are pointers.
type Forecast struct {
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	Timezone         string          `json:"timezone"`
	UTCOffsetSeconds int             `json:"utc_offset_seconds"`
	Current          ForecastCurrent `json:"current"`
	Hourly           ForecastHourly  `json:"hourly"`
	Daily            ForecastDaily   `json:"daily"`
}

// ForecastCurrent holds the current-conditions block.
type ForecastCurrent struct {
	Time                     string   `json:"time"`
	Temperature              *float64 `json:"temperature_2m"`
	RelativeHumidity         *float64 `json:"relative_humidity_2m"`
	WindSpeed                *float64 `json:"wind_speed_10m"`
	PrecipitationProbability *float64 `json:"precipitation_probability"`
	UVIndex                  *float64 `json:"uv_index"`
	Visibility               *float64 `json:"visibility"`
}

// ForecastHourly holds parallel hourly arrays indexed by Time.
type ForecastHourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	RelativeHumidity         []*float64 `json:"relative_humidity_2m"`
	WindSpeed                []*float64 `json:"wind_speed_10m"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	UVIndex                  []*float64 `json:"uv_index"`
	Visibility               []*float64 `json:"visibility"`
}

// ForecastDaily holds sunrise and sunset per day.
type ForecastDaily struct {
	Time    []string `json:"time"`
	Sunrise []string `json:"sunrise"`
	Sunset  []string `json:"sunset"`
}

// AirQuality is the subset of the Open-Meteo air-quality response read.
type AirQuality struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Time        string   `json:"time"`
		EuropeanAQI *float64 `json:"european_aqi"`
	} `json:"current"`
	Hourly struct {
		Time        []string   `json:"time"`
		EuropeanAQI []*float64 `json:"european_aqi"`
	} `json:"hourly"`
}

// Marine is the subset of the Open-Meteo marine response read.
type Marine struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Time            string   `json:"time"`
		SwellWaveHeight *float64 `json:"swell_wave_height"`
	} `json:"current"`
	Hourly struct {
		Time            []string   `json:"time"`
		SwellWaveHeight []*float64 `json:"swell_wave_height"`
	} `json:"hourly"`
}
