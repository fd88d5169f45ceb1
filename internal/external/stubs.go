package external

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

const openMeteoTimeLayout = "2006-01-02T15:04"

// StubWeatherProvider returns deterministic synthetic weather so the API can
// run locally without network access. Values depend only on the coordinate
// and the clock's current hour.
type StubWeatherProvider struct {
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewStubWeatherProvider creates a StubWeatherProvider.
func NewStubWeatherProvider(clock clockwork.Clock, logger *slog.Logger) *StubWeatherProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StubWeatherProvider{clock: clock, logger: logger}
}

// stubOffset approximates the zone from longitude, 15 degrees per hour.
func stubOffset(lon float64) int {
	return int(math.Round(lon/15)) * 3600
}

// stubHours returns local hour starts covering today and tomorrow.
func (p *StubWeatherProvider) stubHours(lon float64) (time.Time, []time.Time, *time.Location) {
	offset := stubOffset(lon)
	loc := time.FixedZone(fmt.Sprintf("GMT%+d", offset/3600), offset)
	now := p.clock.Now().In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	hours := make([]time.Time, 48)
	for i := range hours {
		hours[i] = day.Add(time.Duration(i) * time.Hour)
	}
	return now.Truncate(15 * time.Minute), hours, loc
}

// diurnal is a smooth daily cycle peaking at 15:00 local.
func diurnal(t time.Time) float64 {
	h := float64(t.Hour()) + float64(t.Minute())/60
	return math.Cos((h - 15) / 24 * 2 * math.Pi)
}

// Forecast returns a mild day whose temperature falls with latitude.
func (p *StubWeatherProvider) Forecast(_ context.Context, lat, lon float64) (*Forecast, error) {
	now, hours, loc := p.stubHours(lon)
	base := 24 - math.Abs(lat)*0.35

	sample := func(t time.Time) (temp, hum, wind, rain, uv, vis float64) {
		d := diurnal(t)
		temp = round(base+6*d, 1)
		hum = round(55-20*d, 0)
		wind = round(10+6*d, 1)
		rain = round(math.Max(0, 30*math.Sin(float64(t.Hour())/24*math.Pi*3)), 0)
		uv = round(math.Max(0, 7*d), 1)
		vis = 24000 - 4000*(1-d)
		return
	}

	out := &Forecast{
		Latitude:         lat,
		Longitude:        lon,
		Timezone:         loc.String(),
		UTCOffsetSeconds: stubOffset(lon),
	}

	t, h, w, r, u, v := sample(now)
	out.Current = ForecastCurrent{
		Time:                     now.Format(openMeteoTimeLayout),
		Temperature:              &t,
		RelativeHumidity:         &h,
		WindSpeed:                &w,
		PrecipitationProbability: &r,
		UVIndex:                  &u,
		Visibility:               &v,
	}
	for _, ts := range hours {
		t, h, w, r, u, v := sample(ts)
		out.Hourly.Time = append(out.Hourly.Time, ts.Format(openMeteoTimeLayout))
		out.Hourly.Temperature = append(out.Hourly.Temperature, &t)
		out.Hourly.RelativeHumidity = append(out.Hourly.RelativeHumidity, &h)
		out.Hourly.WindSpeed = append(out.Hourly.WindSpeed, &w)
		out.Hourly.PrecipitationProbability = append(out.Hourly.PrecipitationProbability, &r)
		out.Hourly.UVIndex = append(out.Hourly.UVIndex, &u)
		out.Hourly.Visibility = append(out.Hourly.Visibility, &v)
	}
	for _, day := range []time.Time{hours[0], hours[24]} {
		out.Daily.Time = append(out.Daily.Time, day.Format("2006-01-02"))
		out.Daily.Sunrise = append(out.Daily.Sunrise, day.Add(6*time.Hour+30*time.Minute).Format(openMeteoTimeLayout))
		out.Daily.Sunset = append(out.Daily.Sunset, day.Add(19*time.Hour+15*time.Minute).Format(openMeteoTimeLayout))
	}

	p.logger.Debug("stub forecast served", "lat", lat, "lon", lon)
	return out, nil
}

// AirQuality returns a "fair" AQI that worsens in the afternoon.
func (p *StubWeatherProvider) AirQuality(_ context.Context, _, lon float64) (*AirQuality, error) {
	now, hours, _ := p.stubHours(lon)
	out := &AirQuality{UTCOffsetSeconds: stubOffset(lon)}

	aqi := func(t time.Time) float64 { return round(25+10*diurnal(t), 0) }
	a := aqi(now)
	out.Current.Time = now.Format(openMeteoTimeLayout)
	out.Current.EuropeanAQI = &a
	for _, ts := range hours {
		v := aqi(ts)
		out.Hourly.Time = append(out.Hourly.Time, ts.Format(openMeteoTimeLayout))
		out.Hourly.EuropeanAQI = append(out.Hourly.EuropeanAQI, &v)
	}
	return out, nil
}

// Marine returns a steady 1.4 m swell.
func (p *StubWeatherProvider) Marine(_ context.Context, _, lon float64) (*Marine, error) {
	now, hours, _ := p.stubHours(lon)
	out := &Marine{UTCOffsetSeconds: stubOffset(lon)}

	swell := 1.4
	out.Current.Time = now.Format(openMeteoTimeLayout)
	out.Current.SwellWaveHeight = &swell
	for _, ts := range hours {
		v := round(1.4+0.3*diurnal(ts), 2)
		out.Hourly.Time = append(out.Hourly.Time, ts.Format(openMeteoTimeLayout))
		out.Hourly.SwellWaveHeight = append(out.Hourly.SwellWaveHeight, &v)
	}
	return out, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
