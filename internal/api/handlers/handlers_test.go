package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trailcast/internal/core"
	"trailcast/internal/db"
	"trailcast/internal/outlook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockOutlookService struct {
	mock.Mock
}

func (m *mockOutlookService) ForLocation(ctx context.Context, lat, lon float64, threshold *float64) (*outlook.Outlook, error) {
	args := m.Called(ctx, lat, lon, threshold)
	o, _ := args.Get(0).(*outlook.Outlook)
	return o, args.Error(1)
}

func (m *mockOutlookService) ForUser(ctx context.Context, userID string, q outlook.Query) (*outlook.Outlook, error) {
	args := m.Called(ctx, userID, q)
	o, _ := args.Get(0).(*outlook.Outlook)
	return o, args.Error(1)
}

// newRouter mounts both handlers the way cmd/api does.
func newRouter(t *testing.T, svc OutlookService) http.Handler {
	t.Helper()
	store := db.NewMemoryStore(db.DefaultCatalog())
	logger := testLogger()

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Route("/activities", NewActivityHandler(store, logger).RegisterRoutes)
		NewScoreHandler(svc, store, core.NewValidator(logger), 0, logger).RegisterRoutes(r)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode(t, rec)
	require.NotNil(t, env.Error, rec.Body.String())
	require.Equal(t, code, env.Error.Code)
	return env
}
