package cloudwatch

import (
	"context"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const namespace = "AudiobookEvents"

// API is the subset of the CloudWatch client the publisher uses.
type API interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsPublisher reports pipeline counters and latencies to CloudWatch
// under the AudiobookEvents namespace. Delivery failures are logged and
// swallowed; metrics must never fail the processing path.
type MetricsPublisher struct {
	client API
	logger *zap.Logger
}

// NewMetricsPublisher creates a CloudWatch metrics publisher.
func NewMetricsPublisher(client API, logger *zap.Logger) *MetricsPublisher {
	return &MetricsPublisher{
		client: client,
		logger: logger,
	}
}

// Count publishes a counter value under the given dimensions.
func (m *MetricsPublisher) Count(ctx context.Context, name string, value float64, dimensions map[string]string) {
	m.publish(ctx, name, value, types.StandardUnitCount, dimensions)
}

// Duration publishes a latency measurement in milliseconds.
func (m *MetricsPublisher) Duration(ctx context.Context, name string, d time.Duration, dimensions map[string]string) {
	m.publish(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

// Time measures a function's execution time and publishes it under the
// given metric name.
func (m *MetricsPublisher) Time(ctx context.Context, name string, dimensions map[string]string, fn func() error) error {
	start := time.Now()
	err := fn()
	m.Duration(ctx, name, time.Since(start), dimensions)
	return err
}

func (m *MetricsPublisher) publish(ctx context.Context, name string, value float64, unit types.StandardUnit, dimensions map[string]string) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: toDimensions(dimensions),
			},
		},
	})
	if err != nil {
		m.logger.Warn("Failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

// toDimensions converts a map to sorted CloudWatch dimensions so calls
// are deterministic.
func toDimensions(dimensions map[string]string) []types.Dimension {
	if len(dimensions) == 0 {
		return nil
	}

	names := make([]string, 0, len(dimensions))
	for name := range dimensions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(dimensions[name]),
		})
	}
	return out
}
