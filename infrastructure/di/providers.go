package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"audiolytics/application/ports"
	"audiolytics/application/services"
	"audiolytics/application/simulation"
	"audiolytics/infrastructure/config"
	kinesispub "audiolytics/infrastructure/messaging/kinesis"
	cwmetrics "audiolytics/infrastructure/observability/cloudwatch"
	ddb "audiolytics/infrastructure/persistence/dynamodb"
	s3store "audiolytics/infrastructure/persistence/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance honoring LOG_LEVEL
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideKinesisClient creates a Kinesis client
func ProvideKinesisClient(awsCfg aws.Config) *awskinesis.Client {
	return awskinesis.NewFromConfig(awsCfg)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideEventPublisher creates the Kinesis-backed event publisher
func ProvideEventPublisher(client *awskinesis.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return kinesispub.NewPublisher(client, cfg.StreamName, logger)
}

// ProvideEventRepository creates the DynamoDB-backed event repository
func ProvideEventRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EventRepository {
	return ddb.NewEventRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideArchiveStore creates the S3-backed archive store
func ProvideArchiveStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ArchiveStore {
	return s3store.NewArchiveStore(client, cfg.S3Bucket, logger)
}

// ProvideMetricsPublisher creates the CloudWatch metrics publisher, or a
// no-op publisher when metrics are disabled
func ProvideMetricsPublisher(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) ports.MetricsPublisher {
	if !cfg.EnableMetrics {
		return ports.NopMetrics{}
	}
	return cwmetrics.NewMetricsPublisher(client, logger)
}

// ProvideRandomSource creates the simulation's random source. A zero seed
// falls back to wall-clock seeding for non-reproducible runs.
func ProvideRandomSource(cfg *config.Config) *rand.Rand {
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ProvideEventGenerator creates the session event generator
func ProvideEventGenerator(cfg *config.Config, rng *rand.Rand, logger *zap.Logger) (*simulation.EventGenerator, error) {
	simCfg := simulation.DefaultConfig(cfg.NumUsers, cfg.NumBooks, cfg.WindowStart, cfg.WindowEnd)
	return simulation.NewEventGenerator(simCfg, rng, logger)
}

// ProvideIngestService creates the stream ingest service
func ProvideIngestService(
	repository ports.EventRepository,
	archive ports.ArchiveStore,
	metrics ports.MetricsPublisher,
	logger *zap.Logger,
) *services.IngestService {
	return services.NewIngestService(repository, archive, metrics, logger)
}

// ProvideSimulationService creates the simulation orchestration service
func ProvideSimulationService(
	generator *simulation.EventGenerator,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.SimulationService {
	return services.NewSimulationService(generator, publisher, logger)
}
