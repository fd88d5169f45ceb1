package types

import "time"

// ActivityProfile carries the nine factor weights and the four ideal-range
// fields a score is computed against. Weights are relative: they need not sum
// to one, and a zero weight removes the factor from the score and breakdown.
type ActivityProfile struct {
	TempWeight       float64 `json:"temp_weight" validate:"gte=0"`
	WindWeight       float64 `json:"wind_weight" validate:"gte=0"`
	RainWeight       float64 `json:"rain_weight" validate:"gte=0"`
	HumidityWeight   float64 `json:"humidity_weight" validate:"gte=0"`
	UVWeight         float64 `json:"uv_weight" validate:"gte=0"`
	VisibilityWeight float64 `json:"visibility_weight" validate:"gte=0"`
	AirQualityWeight float64 `json:"air_quality_weight" validate:"gte=0"`
	GoldenHourWeight float64 `json:"golden_hour_weight" validate:"gte=0"`
	SwellWeight      float64 `json:"swell_weight" validate:"gte=0"`

	IdealTempMin       float64 `json:"ideal_temp_min"`
	IdealTempMax       float64 `json:"ideal_temp_max"`
	MaxWindSpeed       float64 `json:"max_wind_speed"`
	MaxRainProbability float64 `json:"max_rain_probability"`
}

// DefaultProfile returns the profile a new activity starts from.
func DefaultProfile() ActivityProfile {
	return ActivityProfile{
		TempWeight:         0.20,
		WindWeight:         0.15,
		RainWeight:         0.20,
		UVWeight:           0.10,
		HumidityWeight:     0.10,
		VisibilityWeight:   0.05,
		AirQualityWeight:   0.10,
		GoldenHourWeight:   0,
		SwellWeight:        0,
		IdealTempMin:       10,
		IdealTempMax:       25,
		MaxWindSpeed:       30,
		MaxRainProbability: 20,
	}
}

// ActivityType is a catalog entry.
type ActivityType struct {
	ID          int64           `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	IconName    string          `json:"icon_name"`
	IsActive    bool            `json:"is_active"`
	SortOrder   int             `json:"sort_order"`
	Profile     ActivityProfile `json:"profile"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RangeOverrides are a user's replacements for an activity's ideal ranges.
// A nil field keeps the activity's value. Weights cannot be overridden.
type RangeOverrides struct {
	IdealTempMin       *float64 `json:"ideal_temp_min,omitempty"`
	IdealTempMax       *float64 `json:"ideal_temp_max,omitempty"`
	MaxWindSpeed       *float64 `json:"max_wind_speed,omitempty"`
	MaxRainProbability *float64 `json:"max_rain_probability,omitempty"`
}

// UserActivity links a user to an activity they follow.
type UserActivity struct {
	ID        int64          `json:"id"`
	UserID    string         `json:"user_id"`
	Activity  ActivityType   `json:"activity"`
	Overrides RangeOverrides `json:"overrides"`
	IsPrimary bool           `json:"is_primary"`
	CreatedAt time.Time      `json:"created_at"`
}

// EffectiveProfile is the activity profile with the user's overrides applied.
func (u UserActivity) EffectiveProfile() ActivityProfile {
	return ResolveProfile(u.Activity.Profile, u.Overrides)
}

// ResolveProfile applies overrides to base. For each range field the first
// non-nil value wins: the override, then the base value.
func ResolveProfile(base ActivityProfile, o RangeOverrides) ActivityProfile {
	out := base
	out.IdealTempMin = firstNonNil(o.IdealTempMin, base.IdealTempMin)
	out.IdealTempMax = firstNonNil(o.IdealTempMax, base.IdealTempMax)
	out.MaxWindSpeed = firstNonNil(o.MaxWindSpeed, base.MaxWindSpeed)
	out.MaxRainProbability = firstNonNil(o.MaxRainProbability, base.MaxRainProbability)
	return out
}

func firstNonNil(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

// User holds the profile fields relevant to scoring.
type User struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	HomeLatitude     *float64 `json:"home_latitude,omitempty"`
	HomeLongitude    *float64 `json:"home_longitude,omitempty"`
	HomeLocationName string   `json:"home_location_name"`
	UseMetric        bool     `json:"use_metric"`
	Timezone         string   `json:"timezone"`
}

// HomeLocation returns the user's home coordinates when both are set.
func (u *User) HomeLocation() (lat, lon float64, ok bool) {
	if u == nil || u.HomeLatitude == nil || u.HomeLongitude == nil {
		return 0, 0, false
	}
	return *u.HomeLatitude, *u.HomeLongitude, true
}
