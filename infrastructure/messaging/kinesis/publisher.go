package kinesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"audiolytics/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	// maxBatchRecords is the PutRecords API limit.
	maxBatchRecords = 500

	defaultMaxRetries = 3
	baseRetryDelay    = time.Second
)

// API is the subset of the Kinesis client the publisher uses.
type API interface {
	PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error)
	PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error)
	DescribeStream(ctx context.Context, params *kinesis.DescribeStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error)
	CreateStream(ctx context.Context, params *kinesis.CreateStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.CreateStreamOutput, error)
}

// Publisher sends playback event records to a Kinesis stream. The user ID
// is the partition key, so one user's session stays ordered on one shard.
type Publisher struct {
	client     API
	streamName string
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewPublisher creates a Kinesis publisher for the given stream.
func NewPublisher(client API, streamName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:     client,
		streamName: streamName,
		maxRetries: defaultMaxRetries,
		retryDelay: baseRetryDelay,
		logger:     logger,
	}
}

// EnsureStream creates the stream if it does not exist and waits for it
// to become active.
func (p *Publisher) EnsureStream(ctx context.Context, shardCount int32) error {
	_, err := p.client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
		StreamName: aws.String(p.streamName),
	})
	if err == nil {
		p.logger.Info("Kinesis stream already exists", zap.String("stream", p.streamName))
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe stream %s: %w", p.streamName, err)
	}

	p.logger.Info("Creating Kinesis stream",
		zap.String("stream", p.streamName),
		zap.Int32("shards", shardCount),
	)
	if _, err := p.client.CreateStream(ctx, &kinesis.CreateStreamInput{
		StreamName: aws.String(p.streamName),
		ShardCount: aws.Int32(shardCount),
	}); err != nil {
		return fmt.Errorf("failed to create stream %s: %w", p.streamName, err)
	}

	return p.waitForActive(ctx)
}

// PublishEvent sends a single record, retrying on throughput throttling
// with exponential backoff.
func (p *Publisher) PublishEvent(ctx context.Context, record entities.EventRecord) error {
	if record.UserID == "" {
		return errors.New("event must have a user ID for the partition key")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", record.EventID, err)
	}

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		out, err := p.client.PutRecord(ctx, &kinesis.PutRecordInput{
			StreamName:   aws.String(p.streamName),
			Data:         data,
			PartitionKey: aws.String(record.UserID),
		})
		if err == nil {
			p.logger.Debug("Published event",
				zap.String("event_id", record.EventID),
				zap.String("shard_id", aws.ToString(out.ShardId)),
			)
			return nil
		}

		var throttled *types.ProvisionedThroughputExceededException
		if errors.As(err, &throttled) && attempt < p.maxRetries-1 {
			if err := sleepContext(ctx, p.backoffDelay(attempt)); err != nil {
				return err
			}
			continue
		}

		p.logger.Error("Failed to publish event",
			zap.String("event_id", record.EventID),
			zap.String("error_code", apiErrorCode(err)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish event %s: %w", record.EventID, err)
	}

	return fmt.Errorf("failed to publish event %s after %d attempts", record.EventID, p.maxRetries)
}

// PublishBatch sends records in PutRecords batches. Failed records within
// a batch are resent alone; a batch that still has failures after all
// retries fails the call.
func (p *Publisher) PublishBatch(ctx context.Context, records []entities.EventRecord) error {
	total := len(records)
	sent := 0

	for start := 0; start < total; start += maxBatchRecords {
		end := start + maxBatchRecords
		if end > total {
			end = total
		}

		entries, err := buildEntries(records[start:end])
		if err != nil {
			return err
		}

		if err := p.sendBatch(ctx, entries); err != nil {
			return err
		}

		sent += end - start
		p.logger.Info("Publish progress",
			zap.Int("sent", sent),
			zap.Int("total", total),
		)
	}

	return nil
}

// sendBatch pushes one PutRecords call, retrying only the entries the
// service reported as failed.
func (p *Publisher) sendBatch(ctx context.Context, entries []types.PutRecordsRequestEntry) error {
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		out, err := p.client.PutRecords(ctx, &kinesis.PutRecordsInput{
			StreamName: aws.String(p.streamName),
			Records:    entries,
		})
		if err != nil {
			if attempt < p.maxRetries-1 {
				p.logger.Warn("Batch publish attempt failed, retrying",
					zap.Int("attempt", attempt+1),
					zap.String("error_code", apiErrorCode(err)),
					zap.Error(err),
				)
				if err := sleepContext(ctx, p.backoffDelay(attempt)); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("failed to publish batch after %d attempts: %w", p.maxRetries, err)
		}

		failed := aws.ToInt32(out.FailedRecordCount)
		if failed == 0 {
			return nil
		}

		if attempt < p.maxRetries-1 {
			p.logger.Warn("Records failed within batch, retrying failed subset",
				zap.Int32("failed", failed),
				zap.Int("attempt", attempt+1),
			)
			entries = failedEntries(entries, out.Records)
			if err := sleepContext(ctx, p.backoffDelay(attempt)); err != nil {
				return err
			}
			continue
		}

		return fmt.Errorf("%d records still failing after %d attempts", failed, p.maxRetries)
	}

	return nil
}

func (p *Publisher) waitForActive(ctx context.Context) error {
	waiter := kinesis.NewStreamExistsWaiter(p.client)
	if err := waiter.Wait(ctx, &kinesis.DescribeStreamInput{
		StreamName: aws.String(p.streamName),
	}, 2*time.Minute); err != nil {
		return fmt.Errorf("stream %s did not become active: %w", p.streamName, err)
	}

	p.logger.Info("Kinesis stream is active", zap.String("stream", p.streamName))
	return nil
}

func buildEntries(records []entities.EventRecord) ([]types.PutRecordsRequestEntry, error) {
	entries := make([]types.PutRecordsRequestEntry, 0, len(records))
	for _, record := range records {
		if record.UserID == "" {
			return nil, fmt.Errorf("event %s has no user ID for the partition key", record.EventID)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event %s: %w", record.EventID, err)
		}
		entries = append(entries, types.PutRecordsRequestEntry{
			Data:         data,
			PartitionKey: aws.String(record.UserID),
		})
	}
	return entries, nil
}

// failedEntries picks the request entries whose result carries an error
// code, preserving order.
func failedEntries(entries []types.PutRecordsRequestEntry, results []types.PutRecordsResultEntry) []types.PutRecordsRequestEntry {
	retry := make([]types.PutRecordsRequestEntry, 0)
	for i, result := range results {
		if result.ErrorCode != nil {
			retry = append(retry, entries[i])
		}
	}
	return retry
}

func (p *Publisher) backoffDelay(attempt int) time.Duration {
	return p.retryDelay * (1 << attempt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
