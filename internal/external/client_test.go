package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/types"
)

func noopSleep(time.Duration) {}

func newTestClient(t *testing.T, policy RetryPolicy, opts ...BaseClientOption) *BaseClient {
	t.Helper()
	opts = append([]BaseClientOption{WithSleepFunc(noopSleep)}, opts...)
	return NewBaseClient(&http.Client{Timeout: 5 * time.Second}, "test-provider", policy, "Trailcast-Test/1.0", opts...)
}

func TestGetJSON_Success(t *testing.T) {
	var gotUA, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer server.Close()

	client := newTestClient(t, DefaultRetryPolicy())
	ctx := types.WithRequestID(context.Background(), "req-123")

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, client.GetJSON(ctx, server.URL, &out))

	assert.Equal(t, 42, out.Value)
	assert.Equal(t, "Trailcast-Test/1.0", gotUA)
	assert.Equal(t, "req-123", gotRequestID)
}

func TestGetJSON_NoRequestIDWithoutContextValue(t *testing.T) {
	var present bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["X-Request-Id"]
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var out map[string]any
	require.NoError(t, newTestClient(t, DefaultRetryPolicy()).GetJSON(context.Background(), server.URL, &out))
	assert.False(t, present)
}

func TestGetJSON_RetriesOn5xxThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, RetryPolicy{MaxRetries: 3, MinWait: time.Millisecond, MaxWait: time.Millisecond})

	var out map[string]bool
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_ExhaustedRetries(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode types.ErrorCode
	}{
		{"server error", http.StatusInternalServerError, types.ErrCodeUpstreamUnavailable},
		{"rate limited", http.StatusTooManyRequests, types.ErrCodeUpstreamRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(t, RetryPolicy{MaxRetries: 2, MinWait: time.Millisecond, MaxWait: time.Millisecond})

			var out map[string]any
			err := client.GetJSON(context.Background(), server.URL, &out)

			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, "test-provider", appErr.Details["provider"])
			assert.Equal(t, int32(3), calls.Load())
		})
	}
}

func TestGetJSON_4xxNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"No data is available for this location"}`))
	}))
	defer server.Close()

	var out map[string]any
	err := newTestClient(t, DefaultRetryPolicy()).GetJSON(context.Background(), server.URL, &out)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Details["status"])
	assert.Contains(t, appErr.Details["body"], "No data is available")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"value":`))
	}))
	defer server.Close()

	var out map[string]any
	err := newTestClient(t, DefaultRetryPolicy()).GetJSON(context.Background(), server.URL, &out)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}

func TestGetJSON_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var out map[string]any
	err := newTestClient(t, RetryPolicy{MaxRetries: 1, MinWait: time.Millisecond, MaxWait: time.Millisecond}).
		GetJSON(context.Background(), url, &out)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}

func TestDo_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "trip-fast",
		Timeout: time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 2
		},
	})
	client := newTestClient(t, RetryPolicy{MaxRetries: 0}, WithBreaker(cb))

	for range 2 {
		var out map[string]any
		_ = client.GetJSON(context.Background(), server.URL, &out)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	var out map[string]any
	err := client.GetJSON(context.Background(), server.URL, &out)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "circuit breaker is open")
	assert.Equal(t, int32(2), calls.Load(), "open breaker short-circuits the call")
}

func TestDo_RespectsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var slept []time.Duration
	client := newTestClient(t,
		RetryPolicy{MaxRetries: 1, MinWait: time.Millisecond, MaxWait: 5 * time.Second},
		WithSleepFunc(func(d time.Duration) { slept = append(slept, d) }),
	)

	var out map[string]any
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, []time.Duration{5 * time.Second}, slept, "Retry-After is capped by MaxWait")
}

func TestComputeBackoff_Bounds(t *testing.T) {
	client := newTestClient(t, RetryPolicy{MinWait: 100 * time.Millisecond, MaxWait: time.Second})

	for attempt := range 6 {
		wait := client.computeBackoff(attempt, nil)
		assert.GreaterOrEqual(t, wait, 100*time.Millisecond)
		assert.LessOrEqual(t, wait, time.Second)
	}
	assert.Equal(t, 100*time.Millisecond, client.computeBackoff(0, nil))
}
