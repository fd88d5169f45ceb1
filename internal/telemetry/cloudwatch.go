package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/jonboulle/clockwork"

	"trailcast/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// maxDatumsPerCall is the PutMetricData per-request datum limit.
const maxDatumsPerCall = 1000

// DefaultFlushInterval is how often Run publishes buffered datums.
const DefaultFlushInterval = 30 * time.Second

// CloudWatchCollector buffers metric datums in memory and publishes them in
// batches. Recording never blocks on the network.
//
// Metrics emitted:
//   - APILatency: Dims {Endpoint, Method}, milliseconds
//   - APIRequests: Dims {Endpoint, Method, StatusClass}, count
//   - ActivityEvaluation: Dims {Activity, Label}, count
//   - ExternalAPIFailure: Dims {Provider}, count
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	clock     clockwork.Clock
	logger    *slog.Logger

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
}

// NewCloudWatchCollector creates a collector publishing to namespace. An
// empty namespace falls back to types.MetricNamespace.
func NewCloudWatchCollector(client CloudWatchClient, namespace string, clock clockwork.Clock, logger *slog.Logger) *CloudWatchCollector {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchCollector{
		client:    client,
		namespace: namespace,
		clock:     clock,
		logger:    logger,
	}
}

// RecordRequest implements core.MetricsCollector.
func (c *CloudWatchCollector) RecordRequest(method, route, status string, duration time.Duration) {
	endpoint := dim(types.DimEndpoint, route)
	m := dim(types.DimMethod, method)
	c.add(
		c.datum(types.MetricAPILatency, float64(duration.Milliseconds()), cwtypes.StandardUnitMilliseconds, endpoint, m),
		c.datum(types.MetricAPIRequests, 1, cwtypes.StandardUnitCount, endpoint, m, dim(types.DimStatus, StatusClass(status))),
	)
}

// RecordEvaluation implements outlook.Metrics.
func (c *CloudWatchCollector) RecordEvaluation(activity, label string) {
	c.add(c.datum(types.MetricActivityEvaluation, 1, cwtypes.StandardUnitCount,
		dim(types.DimActivity, activity), dim(types.DimLabel, label)))
}

// RecordUpstreamFailure implements forecasts.FailureRecorder.
func (c *CloudWatchCollector) RecordUpstreamFailure(provider string) {
	c.add(c.datum(types.MetricExternalAPIFailure, 1, cwtypes.StandardUnitCount,
		dim(types.DimProvider, provider)))
}

// Pending reports the number of buffered datums.
func (c *CloudWatchCollector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Flush publishes every buffered datum in batches of at most
// maxDatumsPerCall. Datums in a failed batch are dropped; the first error is
// returned after the remaining batches have been attempted.
func (c *CloudWatchCollector) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	var firstErr error
	for start := 0; start < len(batch); start += maxDatumsPerCall {
		end := min(start+maxDatumsPerCall, len(batch))
		_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			c.logger.Error("failed to publish metrics",
				"error", err.Error(),
				"namespace", c.namespace,
				"datums", end-start,
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("put metric data: %w", err)
			}
		}
	}
	return firstErr
}

// Run flushes every interval until ctx is done, then flushes once more with
// a context that ignores the cancellation.
func (c *CloudWatchCollector) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = c.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.Chan():
			_ = c.Flush(ctx)
		}
	}
}

func (c *CloudWatchCollector) add(datums ...cwtypes.MetricDatum) {
	c.mu.Lock()
	c.pending = append(c.pending, datums...)
	c.mu.Unlock()
}

func (c *CloudWatchCollector) datum(name string, value float64, unit cwtypes.StandardUnit, dims ...cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(c.clock.Now()),
		Dimensions: dims,
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
