// Package handlers contains the HTTP handlers mounted under /v1.
package handlers

import (
	"net/url"
	"strconv"

	"trailcast/internal/types"
)

// coordinateQuery is validated with the core validator's domain tags.
type coordinateQuery struct {
	Lat       float64  `json:"lat" validate:"is_latitude"`
	Lon       float64  `json:"lon" validate:"is_longitude"`
	Threshold *float64 `json:"threshold" validate:"omitempty,is_threshold"`
}

// floatParam parses an optional float query parameter. A present but
// unparseable value fails with code.
func floatParam(q url.Values, name string, code types.ErrorCode) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(code, name+" must be a valid number", nil,
			map[string]any{name: raw})
	}
	return &v, nil
}

// requiredFloatParam is floatParam with a missing-field error when absent.
func requiredFloatParam(q url.Values, name string, code types.ErrorCode) (float64, error) {
	v, err := floatParam(q, name, code)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
			name+" query parameter is required", nil, map[string]any{"field": name})
	}
	return *v, nil
}
