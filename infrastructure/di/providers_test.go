package di

import (
	"testing"

	"audiolytics/application/ports"
	"audiolytics/infrastructure/config"
	cwmetrics "audiolytics/infrastructure/observability/cloudwatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProvideLogger(t *testing.T) {
	t.Run("honors the configured level", func(t *testing.T) {
		logger, err := ProvideLogger(&config.Config{Environment: "development", LogLevel: "warn"})
		require.NoError(t, err)

		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := ProvideLogger(&config.Config{Environment: "development", LogLevel: "loud"})
		assert.Error(t, err)
	})
}

func TestProvideMetricsPublisher(t *testing.T) {
	t.Run("disabled metrics get a no-op publisher", func(t *testing.T) {
		pub := ProvideMetricsPublisher(nil, &config.Config{EnableMetrics: false}, zap.NewNop())

		_, ok := pub.(ports.NopMetrics)
		assert.True(t, ok)
	})

	t.Run("enabled metrics get the CloudWatch publisher", func(t *testing.T) {
		pub := ProvideMetricsPublisher(nil, &config.Config{EnableMetrics: true}, zap.NewNop())

		_, ok := pub.(*cwmetrics.MetricsPublisher)
		assert.True(t, ok)
	})
}
