package types

import (
	"fmt"
	"math"
)

// Validation constraint constants.
const (
	MinLat       = -90.0
	MaxLat       = 90.0
	MinLon       = -180.0
	MaxLon       = 180.0
	MinThreshold = 0.0
	MaxThreshold = 100.0

	// MaxHourlySamples bounds a window evaluation request.
	MaxHourlySamples = 24
)

// ValidateLocation checks that coordinates are on the globe.
func ValidateLocation(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat || math.IsNaN(lat) {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude must be between %.0f and %.0f", MinLat, MaxLat), nil,
			map[string]any{"lat": fmt.Sprint(lat)})
	}
	if lon < MinLon || lon > MaxLon || math.IsNaN(lon) {
		return NewAppErrorWithDetails(ErrCodeValidationInvalidLon,
			fmt.Sprintf("longitude must be between %.0f and %.0f", MinLon, MaxLon), nil,
			map[string]any{"lon": fmt.Sprint(lon)})
	}
	return nil
}

// ValidateThreshold checks a window threshold.
func ValidateThreshold(threshold float64) error {
	if threshold < MinThreshold || threshold > MaxThreshold || math.IsNaN(threshold) {
		return NewAppErrorWithDetails(ErrCodeValidationThresholdRange,
			fmt.Sprintf("threshold must be between %.0f and %.0f", MinThreshold, MaxThreshold), nil,
			map[string]any{"threshold": fmt.Sprint(threshold)})
	}
	return nil
}
