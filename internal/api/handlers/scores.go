package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trailcast/internal/core"
	"trailcast/internal/outlook"
	"trailcast/internal/scoring"
	"trailcast/internal/types"
)

// OutlookService is the subset of outlook.Service the handler needs.
type OutlookService interface {
	ForLocation(ctx context.Context, lat, lon float64, threshold *float64) (*outlook.Outlook, error)
	ForUser(ctx context.Context, userID string, q outlook.Query) (*outlook.Outlook, error)
}

// ScoreHandler serves outlooks and the stateless scoring endpoints.
type ScoreHandler struct {
	outlooks   OutlookService
	activities types.ActivityRepository
	validator  *core.Validator
	threshold  float64
	logger     *slog.Logger
}

// NewScoreHandler creates a ScoreHandler. defaultThreshold applies to window
// evaluations that omit one; values outside (0, 100] select
// scoring.DefaultThreshold.
func NewScoreHandler(
	outlooks OutlookService,
	activities types.ActivityRepository,
	val *core.Validator,
	defaultThreshold float64,
	logger *slog.Logger,
) *ScoreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultThreshold <= 0 || defaultThreshold > types.MaxThreshold {
		defaultThreshold = scoring.DefaultThreshold
	}
	return &ScoreHandler{
		outlooks:   outlooks,
		activities: activities,
		validator:  val,
		threshold:  defaultThreshold,
		logger:     logger,
	}
}

// RegisterRoutes mounts the scoring endpoints on the /v1 router.
func (h *ScoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/scores", h.HandleLocationScores)
	r.Post("/scores/evaluate", h.HandleEvaluateScore)
	r.Post("/windows/evaluate", h.HandleEvaluateWindows)
	r.Get("/users/{userID}/scores", h.HandleUserScores)
}

// HandleLocationScores handles GET /v1/scores?lat&lon[&threshold].
func (h *ScoreHandler) HandleLocationScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := requiredFloatParam(q, "lat", types.ErrCodeValidationInvalidLat)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	lon, err := requiredFloatParam(q, "lon", types.ErrCodeValidationInvalidLon)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	threshold, err := floatParam(q, "threshold", types.ErrCodeValidationThresholdRange)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(coordinateQuery{Lat: lat, Lon: lon, Threshold: threshold}); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.outlooks.ForLocation(r.Context(), lat, lon, threshold)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// HandleUserScores handles GET /v1/users/{userID}/scores. Coordinates are
// optional and default to the user's home location.
func (h *ScoreHandler) HandleUserScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		query outlook.Query
		err   error
	)
	if query.Latitude, err = floatParam(q, "lat", types.ErrCodeValidationInvalidLat); err != nil {
		core.Error(w, r, err)
		return
	}
	if query.Longitude, err = floatParam(q, "lon", types.ErrCodeValidationInvalidLon); err != nil {
		core.Error(w, r, err)
		return
	}
	if query.Threshold, err = floatParam(q, "threshold", types.ErrCodeValidationThresholdRange); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.outlooks.ForUser(r.Context(), chi.URLParam(r, "userID"), query)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}

// Both evaluate requests name the profile to score against either inline
// or as the slug of a catalog activity, never both.

type evaluateScoreRequest struct {
	Weather  *types.WeatherSample   `json:"weather" validate:"required"`
	Profile  *types.ActivityProfile `json:"profile"`
	Activity string                 `json:"activity"`
}

type evaluateWindowsRequest struct {
	Hourly    []types.WeatherSample  `json:"hourly" validate:"required,max=24"`
	Threshold *float64               `json:"threshold" validate:"omitempty,is_threshold"`
	Profile   *types.ActivityProfile `json:"profile"`
	Activity  string                 `json:"activity"`
}

type evaluateWindowsResponse struct {
	Threshold  float64             `json:"threshold"`
	Hours      []scoring.HourScore `json:"hours"`
	Windows    []types.Window      `json:"windows"`
	BestWindow *types.Window       `json:"best_window"`
}

// HandleEvaluateScore handles POST /v1/scores/evaluate: one sample and one
// profile in, one ScoreResult out.
func (h *ScoreHandler) HandleEvaluateScore(w http.ResponseWriter, r *http.Request) {
	var req evaluateScoreRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	profile, err := h.resolveProfile(r.Context(), req.Profile, req.Activity)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: scoring.ComputeScore(*req.Weather, profile)})
}

// HandleEvaluateWindows handles POST /v1/windows/evaluate: up to 24 labelled
// hourly samples in, the per-hour scores and ranked windows out.
func (h *ScoreHandler) HandleEvaluateWindows(w http.ResponseWriter, r *http.Request) {
	var req evaluateWindowsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	for i, s := range req.Hourly {
		if s.Hour == "" {
			core.Error(w, r, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
				"hourly sample is missing its hour label", nil,
				map[string]any{"field": "hourly.hour", "index": i}))
			return
		}
	}
	profile, err := h.resolveProfile(r.Context(), req.Profile, req.Activity)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	threshold := h.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	hours := scoring.ScoreHours(req.Hourly, profile)
	windows := scoring.FindWindowsInScores(hours, threshold)
	resp := evaluateWindowsResponse{
		Threshold: threshold,
		Hours:     hours,
		Windows:   windows,
	}
	if best, ok := scoring.Best(windows); ok {
		resp.BestWindow = &best
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

func (h *ScoreHandler) resolveProfile(ctx context.Context, profile *types.ActivityProfile, slug string) (types.ActivityProfile, error) {
	switch {
	case profile != nil && slug != "":
		return types.ActivityProfile{}, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidProfile,
			"provide either profile or activity, not both", nil,
			map[string]any{"fields": []string{"profile", "activity"}})
	case profile != nil:
		return *profile, nil
	case slug != "":
		a, err := h.activities.GetBySlug(ctx, slug)
		if err != nil {
			return types.ActivityProfile{}, err
		}
		return a.Profile, nil
	default:
		return types.ActivityProfile{}, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
			"profile or activity is required", nil,
			map[string]any{"fields": []string{"profile", "activity"}})
	}
}
