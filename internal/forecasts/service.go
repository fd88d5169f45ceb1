// Package forecasts turns raw provider data into scoring-ready weather for a
// coordinate: the current conditions plus the next hours, with air quality,
// swell and golden-hour timing merged in.
package forecasts

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"trailcast/internal/external"
	"trailcast/internal/types"
)

// DefaultHorizon is the number of hourly samples returned.
const DefaultHorizon = 24

// upstreamConcurrency is the number of provider calls in flight per lookup.
const upstreamConcurrency = 3

// FailureRecorder receives a count for each failed upstream call.
type FailureRecorder interface {
	RecordUpstreamFailure(provider string)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	Horizon  int
	CacheTTL time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Failures FailureRecorder
}

// Service fetches and assembles weather for a coordinate.
type Service struct {
	provider external.WeatherProvider
	horizon  int
	clock    clockwork.Clock
	logger   *slog.Logger
	failures FailureRecorder
	cache    *weatherCache
}

// NewService creates a Service backed by provider.
func NewService(provider external.WeatherProvider, opts Options) *Service {
	if opts.Horizon <= 0 || opts.Horizon > DefaultHorizon {
		opts.Horizon = DefaultHorizon
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		provider: provider,
		horizon:  opts.Horizon,
		clock:    opts.Clock,
		logger:   opts.Logger,
		failures: opts.Failures,
		cache:    newWeatherCache(opts.CacheTTL, opts.Clock),
	}
}

// Conditions returns the weather for a coordinate. The forecast is required.
// Air quality and marine lookups are best-effort: on failure the affected
// readings are left unset.
func (s *Service) Conditions(ctx context.Context, lat, lon float64) (*types.LocationWeather, error) {
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}
	snap, err := s.cache.getOrLoad(ctx, cacheKey(lat, lon), func(ctx context.Context) (*snapshot, error) {
		return s.load(ctx, lat, lon)
	})
	if err != nil {
		return nil, err
	}
	return snap.at(s.clock.Now()), nil
}

func (s *Service) load(ctx context.Context, lat, lon float64) (*snapshot, error) {
	var (
		fc     *external.Forecast
		aq     *external.AirQuality
		marine *external.Marine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upstreamConcurrency)

	g.Go(func() error {
		var err error
		fc, err = s.provider.Forecast(gctx, lat, lon)
		if err != nil {
			s.recordFailure(types.ProviderForecast, err)
		}
		return err
	})
	g.Go(func() error {
		v, err := s.provider.AirQuality(gctx, lat, lon)
		if err != nil {
			s.recordFailure(types.ProviderAirQuality, err)
			return nil
		}
		aq = v
		return nil
	})
	g.Go(func() error {
		v, err := s.provider.Marine(gctx, lat, lon)
		if err != nil {
			s.recordFailure(types.ProviderMarine, err)
			return nil
		}
		marine = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(fc, aq, marine, s.clock.Now(), s.horizon)
}

func (s *Service) recordFailure(provider string, err error) {
	s.logger.Warn("upstream weather lookup failed", "provider", provider, "error", err)
	if s.failures != nil {
		s.failures.RecordUpstreamFailure(provider)
	}
}
