package forecasts

import (
	"fmt"
	"time"

	"trailcast/internal/external"
	"trailcast/internal/types"
)

const (
	openMeteoTimeLayout = "2006-01-02T15:04"
	hourLabelLayout     = "15:04"
)

// series reads a nullable hourly array. A missing reading carries the last
// known value forward, or zero before the first known value.
type series []*float64

func (s series) at(i int) float64 {
	for j := min(i, len(s)-1); j >= 0; j-- {
		if s[j] != nil {
			return *s[j]
		}
	}
	return 0
}

// optional returns the reading at i, or nil when absent.
func (s series) optional(i int) *float64 {
	if i < 0 || i >= len(s) || s[i] == nil {
		return nil
	}
	v := *s[i]
	return &v
}

// byTime indexes a supplementary hourly series by its timestamp string.
func byTime(times []string, values []*float64) map[string]*float64 {
	out := make(map[string]*float64, len(times))
	for i, ts := range times {
		if i < len(values) && values[i] != nil {
			v := *values[i]
			out[ts] = &v
		}
	}
	return out
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func orFallback(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// snapshot is one assembled provider response. The golden windows are kept
// so the current countdown can be re-derived while the entry is cached.
type snapshot struct {
	weather *types.LocationWeather
	golden  []goldenWindow
}

// at returns the weather as seen at now. Only Current.MinutesToGolden
// depends on the read time; hourly samples are fixed to their own hour.
func (s *snapshot) at(now time.Time) *types.LocationWeather {
	lw := *s.weather
	lw.Current.MinutesToGolden = minutesToGolden(now, s.golden)
	return &lw
}

// assemble turns the raw provider payloads into the current sample and up
// to horizon hourly samples starting at the current hour. aq and marine may
// be nil.
func assemble(fc *external.Forecast, aq *external.AirQuality, marine *external.Marine, now time.Time, horizon int) (*snapshot, error) {
	if fc == nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "forecast payload missing", nil)
	}
	if len(fc.Hourly.Time) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "forecast has no hourly data", nil)
	}

	loc := time.FixedZone(fc.Timezone, fc.UTCOffsetSeconds)
	localNow := now.In(loc)

	observedAt, err := time.ParseInLocation(openMeteoTimeLayout, fc.Current.Time, loc)
	if err != nil {
		observedAt = localNow
	}

	hourTimes := make([]time.Time, len(fc.Hourly.Time))
	for i, ts := range fc.Hourly.Time {
		t, err := time.ParseInLocation(openMeteoTimeLayout, ts, loc)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrCodeUpstreamForecast,
				"forecast has an unreadable hourly timestamp", err, map[string]any{"time": ts})
		}
		hourTimes[i] = t
	}

	golden := goldenWindows(parseTimes(fc.Daily.Sunrise, loc), parseTimes(fc.Daily.Sunset, loc))

	var aqByTime, swellByTime map[string]*float64
	var aqCurrent, swellCurrent *float64
	if aq != nil {
		aqByTime = byTime(aq.Hourly.Time, aq.Hourly.EuropeanAQI)
		aqCurrent = copyFloat(aq.Current.EuropeanAQI)
	}
	if marine != nil {
		swellByTime = byTime(marine.Hourly.Time, marine.Hourly.SwellWaveHeight)
		swellCurrent = copyFloat(marine.Current.SwellWaveHeight)
	}

	h := fc.Hourly
	temp, hum, wind, rain := series(h.Temperature), series(h.RelativeHumidity), series(h.WindSpeed), series(h.PrecipitationProbability)
	uv, vis := series(h.UVIndex), series(h.Visibility)

	start := firstHourAtOrAfter(hourTimes, startOfHour(localNow))
	if start < 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeUpstreamForecast,
			"forecast does not cover the current hour", nil,
			map[string]any{"last_hour": fc.Hourly.Time[len(fc.Hourly.Time)-1]})
	}

	// Current readings fall back to the current hour when the block is sparse.
	c := fc.Current
	current := types.WeatherSample{
		Hour:            "Now",
		Temp:            orFallback(c.Temperature, temp.at(start)),
		WindSpeed:       orFallback(c.WindSpeed, wind.at(start)),
		RainProb:        orFallback(c.PrecipitationProbability, rain.at(start)),
		Humidity:        orFallback(c.RelativeHumidity, hum.at(start)),
		UVIndex:         firstPresent(copyFloat(c.UVIndex), uv.optional(start)),
		Visibility:      firstPresent(copyFloat(c.Visibility), vis.optional(start)),
		AQI:             firstPresent(aqCurrent, aqByTime[fc.Hourly.Time[start]]),
		MinutesToGolden: minutesToGolden(localNow, golden),
		SwellHeight:     firstPresent(swellCurrent, swellByTime[fc.Hourly.Time[start]]),
	}

	end := min(start+horizon, len(hourTimes))
	hourly := make([]types.WeatherSample, 0, end-start)
	for i := start; i < end; i++ {
		ts := fc.Hourly.Time[i]
		hourly = append(hourly, types.WeatherSample{
			Hour:            hourTimes[i].Format(hourLabelLayout),
			Temp:            temp.at(i),
			WindSpeed:       wind.at(i),
			RainProb:        rain.at(i),
			Humidity:        hum.at(i),
			UVIndex:         uv.optional(i),
			Visibility:      vis.optional(i),
			AQI:             copyFloat(aqByTime[ts]),
			MinutesToGolden: minutesToGolden(hourTimes[i], golden),
			SwellHeight:     copyFloat(swellByTime[ts]),
		})
	}

	weather := &types.LocationWeather{
		Latitude:   fc.Latitude,
		Longitude:  fc.Longitude,
		Timezone:   timezoneName(fc),
		ObservedAt: observedAt,
		Current:    current,
		Hourly:     hourly,
	}
	return &snapshot{weather: weather, golden: golden}, nil
}

func firstPresent(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstHourAtOrAfter(times []time.Time, t time.Time) int {
	for i, ht := range times {
		if !ht.Before(t) {
			return i
		}
	}
	return -1
}

func parseTimes(values []string, loc *time.Location) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		if t, err := time.ParseInLocation(openMeteoTimeLayout, v, loc); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func timezoneName(fc *external.Forecast) string {
	if fc.Timezone != "" {
		return fc.Timezone
	}
	return fmt.Sprintf("UTC%+d", fc.UTCOffsetSeconds/3600)
}

// startOfHour truncates in local time so half-hour zones stay aligned.
func startOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
