package types

import "time"

// WeatherSample is one evaluation point: the current conditions or a single
// forecast hour. Optional measurements are pointers; a nil value means the
// reading is unavailable, which scores differently from zero.
type WeatherSample struct {
	// Hour is an opaque display label ("14:00"), carried through unchanged.
	Hour string `json:"hour,omitempty"`

	Temp      float64 `json:"temp"`       // °C
	WindSpeed float64 `json:"wind_speed"` // km/h
	RainProb  float64 `json:"rain_prob"`  // percent
	Humidity  float64 `json:"humidity"`   // percent

	UVIndex         *float64 `json:"uv_index,omitempty"`
	Visibility      *float64 `json:"visibility,omitempty"` // metres
	AQI             *float64 `json:"aqi,omitempty"`        // European AQI
	MinutesToGolden *float64 `json:"minutes_to_golden,omitempty"`
	SwellHeight     *float64 `json:"swell_height,omitempty"` // metres
}

// ScoreResult is the aggregate score for one sample against one profile.
type ScoreResult struct {
	Score   float64            `json:"score"`
	Label   string             `json:"label"`
	Factors map[string]float64 `json:"factors"`
}

// Window is a maximal run of consecutive hours scoring at or above a
// threshold. End equals Start for a one-hour run.
type Window struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Peak  float64 `json:"peak"`
	Avg   float64 `json:"avg"`
}

// Float returns a pointer to v, for building samples with optional fields.
func Float(v float64) *float64 {
	return &v
}

// LocationWeather is the current conditions and the following hours for one
// coordinate, ready for scoring.
type LocationWeather struct {
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Timezone   string          `json:"timezone"`
	ObservedAt time.Time       `json:"observed_at"`
	Current    WeatherSample   `json:"current"`
	Hourly     []WeatherSample `json:"hourly"`
}
