package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/types"
)

func TestStatusClass(t *testing.T) {
	cases := map[string]string{
		"200": "2xx",
		"204": "2xx",
		"404": "4xx",
		"502": "5xx",
		"":    "unknown",
		"20":  "unknown",
		"999": "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusClass(in), in)
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NotPanics(t, func() {
		r.RecordRequest("GET", "/health", "200", time.Millisecond)
		r.RecordEvaluation("hiking", "Good")
		r.RecordUpstreamFailure(types.ProviderMarine)
	})
}

// --- Prometheus ---

func scrape(t *testing.T, c *PrometheusCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusCollector(t *testing.T) {
	c := NewPrometheusCollector("Trailcast")

	c.RecordRequest("GET", "/v1/scores", "200", 120*time.Millisecond)
	c.RecordRequest("GET", "/v1/scores", "201", 80*time.Millisecond)
	c.RecordRequest("GET", "/v1/activities/{slug}", "404", time.Millisecond)
	c.RecordEvaluation("surfing", "Excellent")
	c.RecordUpstreamFailure(types.ProviderAirQuality)

	out := scrape(t, c)
	assert.Contains(t, out, `trailcast_http_requests_total{method="GET",route="/v1/scores",status="2xx"} 2`)
	assert.Contains(t, out, `trailcast_http_requests_total{method="GET",route="/v1/activities/{slug}",status="4xx"} 1`)
	assert.Contains(t, out, `trailcast_http_request_duration_seconds_count{method="GET",route="/v1/scores"} 2`)
	assert.Contains(t, out, `trailcast_activity_evaluations_total{activity="surfing",label="Excellent"} 1`)
	assert.Contains(t, out, `trailcast_upstream_failures_total{provider="open-meteo-air-quality"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestPrometheusCollector_IndependentRegistries(t *testing.T) {
	a := NewPrometheusCollector("trailcast")
	b := NewPrometheusCollector("trailcast")
	a.RecordEvaluation("hiking", "Good")

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.NotContains(t, scrape(t, b), `activity="hiking"`)
}

// --- CloudWatch ---

// mockCloudWatchClient records PutMetricData calls for verification.
type mockCloudWatchClient struct {
	mu        sync.Mutex
	calls     []*cloudwatch.PutMetricDataInput
	returnErr error
	notify    chan struct{}
}

func (m *mockCloudWatchClient) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	m.mu.Unlock()
	if m.notify != nil {
		m.notify <- struct{}{}
	}
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func (m *mockCloudWatchClient) Calls() []*cloudwatch.PutMetricDataInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*cloudwatch.PutMetricDataInput(nil), m.calls...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dims(d cwtypes.MetricDatum) map[string]string {
	out := make(map[string]string, len(d.Dimensions))
	for _, x := range d.Dimensions {
		out[aws.ToString(x.Name)] = aws.ToString(x.Value)
	}
	return out
}

func TestCloudWatchCollector_Flush(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	cw := &mockCloudWatchClient{}
	c := NewCloudWatchCollector(cw, "", clockwork.NewFakeClockAt(now), quietLogger())

	c.RecordRequest("POST", "/v1/scores/evaluate", "400", 42*time.Millisecond)
	c.RecordEvaluation("hiking", "Good")
	c.RecordUpstreamFailure(types.ProviderMarine)
	require.Equal(t, 4, c.Pending())
	require.Empty(t, cw.Calls(), "recording must not publish")

	require.NoError(t, c.Flush(context.Background()))
	assert.Zero(t, c.Pending())

	calls := cw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, types.MetricNamespace, aws.ToString(calls[0].Namespace))

	data := calls[0].MetricData
	require.Len(t, data, 4)

	assert.Equal(t, types.MetricAPILatency, aws.ToString(data[0].MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(data[0].Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, data[0].Unit)
	assert.Equal(t, map[string]string{"Endpoint": "/v1/scores/evaluate", "Method": "POST"}, dims(data[0]))
	assert.Equal(t, now, aws.ToTime(data[0].Timestamp))

	assert.Equal(t, types.MetricAPIRequests, aws.ToString(data[1].MetricName))
	assert.Equal(t, "4xx", dims(data[1])["StatusClass"])

	assert.Equal(t, types.MetricActivityEvaluation, aws.ToString(data[2].MetricName))
	assert.Equal(t, map[string]string{"Activity": "hiking", "Label": "Good"}, dims(data[2]))

	assert.Equal(t, types.MetricExternalAPIFailure, aws.ToString(data[3].MetricName))
	assert.Equal(t, types.ProviderMarine, dims(data[3])["Provider"])
}

func TestCloudWatchCollector_FlushEmpty(t *testing.T) {
	cw := &mockCloudWatchClient{}
	c := NewCloudWatchCollector(cw, "Custom", nil, quietLogger())

	require.NoError(t, c.Flush(context.Background()))
	assert.Empty(t, cw.Calls())
}

func TestCloudWatchCollector_FlushBatches(t *testing.T) {
	cw := &mockCloudWatchClient{}
	c := NewCloudWatchCollector(cw, "Custom", clockwork.NewFakeClock(), quietLogger())

	for i := 0; i < maxDatumsPerCall+5; i++ {
		c.RecordUpstreamFailure(types.ProviderForecast)
	}
	require.NoError(t, c.Flush(context.Background()))

	calls := cw.Calls()
	require.Len(t, calls, 2)
	assert.Len(t, calls[0].MetricData, maxDatumsPerCall)
	assert.Len(t, calls[1].MetricData, 5)
	assert.Equal(t, "Custom", aws.ToString(calls[1].Namespace))
}

func TestCloudWatchCollector_FlushError(t *testing.T) {
	cw := &mockCloudWatchClient{returnErr: errors.New("throttled")}
	c := NewCloudWatchCollector(cw, "", clockwork.NewFakeClock(), quietLogger())
	c.RecordEvaluation("running", "Fair")

	err := c.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Zero(t, c.Pending(), "failed datums are dropped")
}

func TestCloudWatchCollector_Run(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cw := &mockCloudWatchClient{notify: make(chan struct{}, 4)}
	c := NewCloudWatchCollector(cw, "", clock, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Minute)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	c.RecordEvaluation("cycling", "Poor")
	clock.Advance(time.Minute)

	select {
	case <-cw.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker flush did not publish")
	}

	c.RecordEvaluation("cycling", "Good")
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, cw.Calls(), 2, "final flush on shutdown")
}
