package ports

import (
	"context"
	"time"
)

// MetricsPublisher reports pipeline health counters and latencies.
// Implementations must never fail the caller: metric delivery problems
// are logged and swallowed.
type MetricsPublisher interface {
	// Count publishes a counter value under the given dimensions.
	Count(ctx context.Context, name string, value float64, dimensions map[string]string)

	// Duration publishes a latency measurement in milliseconds.
	Duration(ctx context.Context, name string, d time.Duration, dimensions map[string]string)
}

// NopMetrics drops every metric. It stands in for the real publisher when
// metric delivery is disabled.
type NopMetrics struct{}

func (NopMetrics) Count(context.Context, string, float64, map[string]string) {}

func (NopMetrics) Duration(context.Context, string, time.Duration, map[string]string) {}
