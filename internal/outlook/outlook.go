// Package outlook combines location weather with the activity catalog: every
// activity gets a current score and its best windows over the coming hours.
package outlook

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"trailcast/internal/scoring"
	"trailcast/internal/types"
)

// Metrics receives one count per activity scored.
type Metrics interface {
	RecordEvaluation(activity, label string)
}

// WeatherSource resolves the weather for a coordinate.
type WeatherSource interface {
	Conditions(ctx context.Context, lat, lon float64) (*types.LocationWeather, error)
}

// ActivitySummary is the catalog data repeated in each outlook entry.
type ActivitySummary struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	IconName string `json:"icon_name"`
}

// ActivityOutlook is the score of one activity now and its windows ahead.
type ActivityOutlook struct {
	Activity   ActivitySummary    `json:"activity"`
	Score      float64            `json:"score"`
	Label      string             `json:"label"`
	Factors    map[string]float64 `json:"factors"`
	BestWindow *types.Window      `json:"best_window"`
	Windows    []types.Window     `json:"windows"`
	IsPrimary  bool               `json:"is_primary,omitempty"`
}

// Location identifies the coordinate an outlook was computed for.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Name      string  `json:"name,omitempty"`
}

// Outlook is the response of both outlook operations.
type Outlook struct {
	Location   Location            `json:"location"`
	ObservedAt time.Time           `json:"observed_at"`
	Threshold  float64             `json:"threshold"`
	Current    types.WeatherSample `json:"current"`
	Activities []ActivityOutlook   `json:"activities"`
}

// Query carries the optional parameters of a user outlook. Latitude and
// Longitude must be given together; when both are nil the user's home
// location is used.
type Query struct {
	Latitude  *float64
	Longitude *float64
	Threshold *float64
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	DefaultThreshold float64
	Metrics          Metrics
	Logger           *slog.Logger
}

// Service builds outlooks.
type Service struct {
	weather        WeatherSource
	activities     types.ActivityRepository
	users          types.UserRepository
	userActivities types.UserActivityRepository
	threshold      float64
	metrics        Metrics
	logger         *slog.Logger
}

// NewService creates a Service.
func NewService(
	weather WeatherSource,
	activities types.ActivityRepository,
	users types.UserRepository,
	userActivities types.UserActivityRepository,
	opts Options,
) *Service {
	if opts.DefaultThreshold <= 0 || opts.DefaultThreshold > types.MaxThreshold {
		opts.DefaultThreshold = scoring.DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		weather:        weather,
		activities:     activities,
		users:          users,
		userActivities: userActivities,
		threshold:      opts.DefaultThreshold,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
	}
}

// entry is an activity paired with the profile it is scored against.
type entry struct {
	activity types.ActivityType
	profile  types.ActivityProfile
	primary  bool
}

// ForLocation scores every active activity at a coordinate.
func (s *Service) ForLocation(ctx context.Context, lat, lon float64, threshold *float64) (*Outlook, error) {
	t, err := s.resolveThreshold(threshold)
	if err != nil {
		return nil, err
	}
	if err := types.ValidateLocation(lat, lon); err != nil {
		return nil, err
	}

	catalog, err := s.activities.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	weather, err := s.weather.Conditions(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, len(catalog))
	for i, a := range catalog {
		entries[i] = entry{activity: a, profile: a.Profile}
	}
	return s.build(weather, Location{Latitude: lat, Longitude: lon}, entries, t), nil
}

// ForUser scores the user's activities with their overrides applied. A user
// who follows no activities gets the full catalog.
func (s *Service) ForUser(ctx context.Context, userID string, q Query) (*Outlook, error) {
	t, err := s.resolveThreshold(q.Threshold)
	if err != nil {
		return nil, err
	}
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
			"lat and lon must be provided together", nil,
			map[string]any{"fields": []string{"lat", "lon"}})
	}

	var (
		user     *types.User
		followed []types.UserActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.GetByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		followed, err = s.userActivities.ListForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loc := Location{}
	if q.Latitude != nil {
		loc.Latitude, loc.Longitude = *q.Latitude, *q.Longitude
	} else {
		lat, lon, ok := user.HomeLocation()
		if !ok {
			return nil, types.NewAppError(types.ErrCodeValidationLocationRequired,
				"no coordinates given and the user has no home location", nil)
		}
		loc.Latitude, loc.Longitude, loc.Name = lat, lon, user.HomeLocationName
	}
	if err := types.ValidateLocation(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}

	var entries []entry
	if len(followed) == 0 {
		catalog, err := s.activities.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range catalog {
			entries = append(entries, entry{activity: a, profile: a.Profile})
		}
	} else {
		for _, ua := range followed {
			entries = append(entries, entry{activity: ua.Activity, profile: ua.EffectiveProfile(), primary: ua.IsPrimary})
		}
	}

	weather, err := s.weather.Conditions(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("user outlook", "user_id", userID, "activities", len(entries), "home", q.Latitude == nil)
	return s.build(weather, loc, entries, t), nil
}

func (s *Service) resolveThreshold(threshold *float64) (float64, error) {
	if threshold == nil {
		return s.threshold, nil
	}
	if err := types.ValidateThreshold(*threshold); err != nil {
		return 0, err
	}
	return *threshold, nil
}

func (s *Service) build(weather *types.LocationWeather, loc Location, entries []entry, threshold float64) *Outlook {
	loc.Timezone = weather.Timezone
	out := &Outlook{
		Location:   loc,
		ObservedAt: weather.ObservedAt,
		Threshold:  threshold,
		Current:    weather.Current,
		Activities: make([]ActivityOutlook, 0, len(entries)),
	}
	for _, e := range entries {
		ao := Evaluate(weather, e.activity, e.profile, threshold)
		ao.IsPrimary = e.primary
		if s.metrics != nil {
			s.metrics.RecordEvaluation(e.activity.Slug, ao.Label)
		}
		out.Activities = append(out.Activities, ao)
	}
	// Highest score first; ties keep entry order.
	sort.SliceStable(out.Activities, func(i, j int) bool {
		return out.Activities[i].Score > out.Activities[j].Score
	})
	return out
}

// Evaluate scores one activity against the current conditions and finds its
// windows across the hourly samples.
func Evaluate(weather *types.LocationWeather, a types.ActivityType, profile types.ActivityProfile, threshold float64) ActivityOutlook {
	result := scoring.ComputeScore(weather.Current, profile)
	windows := scoring.FindBestWindows(weather.Hourly, profile, threshold)
	ao := ActivityOutlook{
		Activity: ActivitySummary{
			Slug:     a.Slug,
			Name:     a.Name,
			Emoji:    a.Emoji,
			IconName: a.IconName,
		},
		Score:   result.Score,
		Label:   result.Label,
		Factors: result.Factors,
		Windows: windows,
	}
	if best, ok := scoring.Best(windows); ok {
		ao.BestWindow = &best
	}
	return ao
}
