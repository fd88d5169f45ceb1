// Package telemetry implements the request, evaluation and upstream-failure
// metrics for the API. A Prometheus collector serves /metrics from its own
// registry; a CloudWatch collector buffers datums and publishes them with
// PutMetricData.
package telemetry

import (
	"time"
)

// Recorder is satisfied by every collector in this package. It is the union
// of core.MetricsCollector, outlook.Metrics and forecasts.FailureRecorder.
type Recorder interface {
	RecordRequest(method, route, status string, duration time.Duration)
	RecordEvaluation(activity, label string)
	RecordUpstreamFailure(provider string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, string, time.Duration) {}
func (Nop) RecordEvaluation(string, string)                      {}
func (Nop) RecordUpstreamFailure(string)                         {}

// StatusClass collapses an HTTP status code ("404") to its class ("4xx").
// Anything unparseable is reported as "unknown".
func StatusClass(status string) string {
	if len(status) != 3 || status[0] < '1' || status[0] > '5' {
		return "unknown"
	}
	return status[:1] + "xx"
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*PrometheusCollector)(nil)
	_ Recorder = (*CloudWatchCollector)(nil)
)
