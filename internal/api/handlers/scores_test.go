package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trailcast/internal/db"
	"trailcast/internal/outlook"
	"trailcast/internal/scoring"
	"trailcast/internal/types"
)

func sampleOutlook() *outlook.Outlook {
	return &outlook.Outlook{
		Location:  outlook.Location{Latitude: 37.7, Longitude: -122.4},
		Threshold: scoring.DefaultThreshold,
		Activities: []outlook.ActivityOutlook{
			{Activity: outlook.ActivitySummary{Slug: "hiking", Name: "Hiking"}, Score: 82, Label: "Great"},
		},
	}
}

func TestScoreHandler_LocationScores(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForLocation", mock.Anything, 37.7, -122.4, (*float64)(nil)).Return(sampleOutlook(), nil)
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/scores?lat=37.7&lon=-122.4", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "private, max-age=300", rec.Header().Get("Cache-Control"))

		var got outlook.Outlook
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
		require.Len(t, got.Activities, 1)
		assert.Equal(t, "hiking", got.Activities[0].Activity.Slug)
		svc.AssertExpectations(t)
	})

	t.Run("threshold forwarded", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForLocation", mock.Anything, 10.0, 20.0, mock.MatchedBy(func(th *float64) bool {
			return th != nil && *th == 75
		})).Return(sampleOutlook(), nil)
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/scores?lat=10&lon=20&threshold=75", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	cases := []struct {
		name  string
		query string
		code  types.ErrorCode
	}{
		{"missing lat", "lon=1", types.ErrCodeValidationMissingField},
		{"missing lon", "lat=1", types.ErrCodeValidationMissingField},
		{"unparseable lat", "lat=north&lon=1", types.ErrCodeValidationInvalidLat},
		{"lat out of range", "lat=91&lon=1", types.ErrCodeValidationInvalidLat},
		{"lon out of range", "lat=1&lon=-181", types.ErrCodeValidationInvalidLon},
		{"threshold out of range", "lat=1&lon=1&threshold=150", types.ErrCodeValidationThresholdRange},
		{"unparseable threshold", "lat=1&lon=1&threshold=high", types.ErrCodeValidationThresholdRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOutlookService{}
			h := newRouter(t, svc)

			rec := do(t, h, http.MethodGet, "/v1/scores?"+tc.query, nil)
			requireErrorCode(t, rec, http.StatusBadRequest, string(tc.code))
			svc.AssertNotCalled(t, "ForLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("upstream failure", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForLocation", mock.Anything, 1.0, 1.0, (*float64)(nil)).
			Return(nil, types.NewAppError(types.ErrCodeUpstreamForecast, "forecast unavailable", nil))
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/scores?lat=1&lon=1", nil)
		requireErrorCode(t, rec, http.StatusBadGateway, string(types.ErrCodeUpstreamForecast))
	})

	t.Run("unclassified failure", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForLocation", mock.Anything, 1.0, 1.0, (*float64)(nil)).
			Return(nil, fmt.Errorf("connection reset"))
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/scores?lat=1&lon=1", nil)
		env := requireErrorCode(t, rec, http.StatusInternalServerError, string(types.ErrCodeInternalUnexpected))
		assert.NotContains(t, env.Error.Message, "connection reset")
	})
}

func TestScoreHandler_UserScores(t *testing.T) {
	t.Run("home location", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForUser", mock.Anything, db.DemoUserID, outlook.Query{}).Return(sampleOutlook(), nil)
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/users/"+db.DemoUserID+"/scores", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("explicit coordinates", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForUser", mock.Anything, "u1", mock.MatchedBy(func(q outlook.Query) bool {
			return q.Latitude != nil && *q.Latitude == 45 &&
				q.Longitude != nil && *q.Longitude == 7 &&
				q.Threshold != nil && *q.Threshold == 55
		})).Return(sampleOutlook(), nil)
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/users/u1/scores?lat=45&lon=7&threshold=55", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("unparseable lon", func(t *testing.T) {
		h := newRouter(t, &mockOutlookService{})
		rec := do(t, h, http.MethodGet, "/v1/users/u1/scores?lat=1&lon=east", nil)
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationInvalidLon))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &mockOutlookService{}
		svc.On("ForUser", mock.Anything, "ghost", outlook.Query{}).
			Return(nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil))
		h := newRouter(t, svc)

		rec := do(t, h, http.MethodGet, "/v1/users/ghost/scores", nil)
		requireErrorCode(t, rec, http.StatusNotFound, string(types.ErrCodeNotFoundUser))
	})
}

func mildSample(hour string) types.WeatherSample {
	return types.WeatherSample{
		Hour:       hour,
		Temp:       18,
		WindSpeed:  8,
		RainProb:   5,
		Humidity:   50,
		UVIndex:    types.Float(3),
		Visibility: types.Float(20000),
	}
}

func TestScoreHandler_EvaluateScore(t *testing.T) {
	h := newRouter(t, &mockOutlookService{})
	sample := mildSample("")

	t.Run("inline profile", func(t *testing.T) {
		profile := types.DefaultProfile()
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{
			"weather": sample,
			"profile": profile,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got types.ScoreResult
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
		assert.Equal(t, scoring.ComputeScore(sample, profile), got)
	})

	t.Run("catalog activity", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{
			"weather":  sample,
			"activity": "hiking",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var hiking types.ActivityType
		for _, a := range db.DefaultCatalog() {
			if a.Slug == "hiking" {
				hiking = a
			}
		}
		var got types.ScoreResult
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
		assert.Equal(t, scoring.ComputeScore(sample, hiking.Profile).Score, got.Score)
	})

	t.Run("unknown activity", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{
			"weather":  sample,
			"activity": "skydiving",
		})
		requireErrorCode(t, rec, http.StatusNotFound, string(types.ErrCodeNotFoundActivity))
	})

	t.Run("profile and activity", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{
			"weather":  sample,
			"profile":  types.DefaultProfile(),
			"activity": "hiking",
		})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationInvalidProfile))
	})

	t.Run("neither profile nor activity", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{"weather": sample})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationMissingField))
	})

	t.Run("missing weather", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{"activity": "hiking"})
		env := requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationMissingField))
		assert.Contains(t, env.Error.Message, "weather")
	})

	t.Run("negative weight", func(t *testing.T) {
		profile := types.DefaultProfile()
		profile.WindWeight = -1
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", map[string]any{
			"weather": sample,
			"profile": profile,
		})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationInvalidProfile))
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", `{"weather":{"temp":20},"activity":"hiking","mood":"sunny"}`)
		requireErrorCode(t, rec, http.StatusBadRequest, "validation_invalid_json")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/scores/evaluate", `{"weather":`)
		requireErrorCode(t, rec, http.StatusBadRequest, "validation_invalid_json")
	})
}

type windowsData struct {
	Threshold  float64             `json:"threshold"`
	Hours      []scoring.HourScore `json:"hours"`
	Windows    []types.Window      `json:"windows"`
	BestWindow *types.Window       `json:"best_window"`
}

func TestScoreHandler_EvaluateWindows(t *testing.T) {
	h := newRouter(t, &mockOutlookService{})

	storm := types.WeatherSample{Hour: "11:00", Temp: 35, WindSpeed: 60, RainProb: 100, Humidity: 95}
	hourly := []types.WeatherSample{mildSample("09:00"), mildSample("10:00"), storm, mildSample("12:00")}

	t.Run("ranked windows", func(t *testing.T) {
		profile := types.DefaultProfile()
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{
			"hourly":  hourly,
			"profile": profile,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got windowsData
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
		assert.Equal(t, scoring.DefaultThreshold, got.Threshold)
		require.Len(t, got.Hours, 4)
		assert.Equal(t, "11:00", got.Hours[2].Hour)

		want := scoring.FindBestWindows(hourly, profile, scoring.DefaultThreshold)
		assert.Equal(t, want, got.Windows)
		require.NotNil(t, got.BestWindow)
		assert.Equal(t, want[0], *got.BestWindow)
	})

	t.Run("threshold above every hour", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{
			"hourly":    hourly,
			"activity":  "hiking",
			"threshold": 100,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got windowsData
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &got))
		assert.Empty(t, got.Windows)
		assert.Nil(t, got.BestWindow)
	})

	t.Run("too many hours", func(t *testing.T) {
		many := make([]types.WeatherSample, types.MaxHourlySamples+1)
		for i := range many {
			many[i] = mildSample(fmt.Sprintf("%02d:00", i))
		}
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{
			"hourly":   many,
			"activity": "hiking",
		})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationTooManyHours))
	})

	t.Run("missing hour label", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{
			"hourly":   []types.WeatherSample{mildSample("09:00"), mildSample("")},
			"activity": "hiking",
		})
		env := requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationMissingField))
		assert.EqualValues(t, 1, env.Error.Details["index"])
	})

	t.Run("missing hourly", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{"activity": "hiking"})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationMissingField))
	})

	t.Run("threshold out of range", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/v1/windows/evaluate", map[string]any{
			"hourly":    hourly,
			"activity":  "hiking",
			"threshold": 120,
		})
		requireErrorCode(t, rec, http.StatusBadRequest, string(types.ErrCodeValidationThresholdRange))
	})
}
