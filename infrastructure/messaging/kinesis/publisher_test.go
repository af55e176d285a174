package kinesis

import (
	"context"
	"errors"
	"testing"
	"time"

	"audiolytics/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubKinesisClient struct {
	putRecordCalls  []*kinesis.PutRecordInput
	putRecordsCalls []*kinesis.PutRecordsInput

	putRecordErr   error
	putRecordsFunc func(call int, input *kinesis.PutRecordsInput) (*kinesis.PutRecordsOutput, error)
}

func (s *stubKinesisClient) PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error) {
	s.putRecordCalls = append(s.putRecordCalls, params)
	if s.putRecordErr != nil {
		return nil, s.putRecordErr
	}
	return &kinesis.PutRecordOutput{
		ShardId:        aws.String("shardId-000000000000"),
		SequenceNumber: aws.String("1"),
	}, nil
}

func (s *stubKinesisClient) PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error) {
	call := len(s.putRecordsCalls)
	s.putRecordsCalls = append(s.putRecordsCalls, params)
	if s.putRecordsFunc != nil {
		return s.putRecordsFunc(call, params)
	}
	return &kinesis.PutRecordsOutput{FailedRecordCount: aws.Int32(0)}, nil
}

func (s *stubKinesisClient) DescribeStream(ctx context.Context, params *kinesis.DescribeStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error) {
	return &kinesis.DescribeStreamOutput{}, nil
}

func (s *stubKinesisClient) CreateStream(ctx context.Context, params *kinesis.CreateStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.CreateStreamOutput, error) {
	return &kinesis.CreateStreamOutput{}, nil
}

func testRecord(eventID, userID string) entities.EventRecord {
	return entities.EventRecord{
		EventID:   eventID,
		UserID:    userID,
		BookID:    "book_1",
		EventType: "PAUSE",
		Timestamp: "2024-06-01T12:00:00Z",
		Position:  10,
		Chapter:   1,
	}
}

func newTestPublisher(client API) *Publisher {
	p := NewPublisher(client, "audiobook-events", zap.NewNop())
	p.retryDelay = time.Millisecond
	return p
}

func TestPublisher_PublishEvent(t *testing.T) {
	t.Run("partition key is the user ID", func(t *testing.T) {
		client := &stubKinesisClient{}
		p := newTestPublisher(client)

		err := p.PublishEvent(context.Background(), testRecord("event_1", "user_42"))
		require.NoError(t, err)

		require.Len(t, client.putRecordCalls, 1)
		call := client.putRecordCalls[0]
		assert.Equal(t, "audiobook-events", aws.ToString(call.StreamName))
		assert.Equal(t, "user_42", aws.ToString(call.PartitionKey))
		assert.Contains(t, string(call.Data), `"event_id":"event_1"`)
	})

	t.Run("missing user ID fails before the API call", func(t *testing.T) {
		client := &stubKinesisClient{}
		p := newTestPublisher(client)

		err := p.PublishEvent(context.Background(), testRecord("event_1", ""))
		assert.Error(t, err)
		assert.Empty(t, client.putRecordCalls)
	})

	t.Run("non-throttling errors are not retried", func(t *testing.T) {
		client := &stubKinesisClient{putRecordErr: errors.New("access denied")}
		p := newTestPublisher(client)

		err := p.PublishEvent(context.Background(), testRecord("event_1", "user_1"))
		assert.Error(t, err)
		assert.Len(t, client.putRecordCalls, 1)
	})
}

func TestPublisher_PublishBatch(t *testing.T) {
	t.Run("single batch, all records accepted", func(t *testing.T) {
		client := &stubKinesisClient{}
		p := newTestPublisher(client)

		records := []entities.EventRecord{
			testRecord("event_1", "user_1"),
			testRecord("event_2", "user_2"),
		}
		require.NoError(t, p.PublishBatch(context.Background(), records))

		require.Len(t, client.putRecordsCalls, 1)
		assert.Len(t, client.putRecordsCalls[0].Records, 2)
	})

	t.Run("large batches are chunked at the API limit", func(t *testing.T) {
		client := &stubKinesisClient{}
		p := newTestPublisher(client)

		records := make([]entities.EventRecord, 750)
		for i := range records {
			records[i] = testRecord("event_n", "user_n")
		}
		require.NoError(t, p.PublishBatch(context.Background(), records))

		require.Len(t, client.putRecordsCalls, 2)
		assert.Len(t, client.putRecordsCalls[0].Records, 500)
		assert.Len(t, client.putRecordsCalls[1].Records, 250)
	})

	t.Run("only failed records are resent", func(t *testing.T) {
		client := &stubKinesisClient{}
		client.putRecordsFunc = func(call int, input *kinesis.PutRecordsInput) (*kinesis.PutRecordsOutput, error) {
			if call == 0 {
				// Second record fails on the first attempt.
				return &kinesis.PutRecordsOutput{
					FailedRecordCount: aws.Int32(1),
					Records: []types.PutRecordsResultEntry{
						{SequenceNumber: aws.String("1")},
						{ErrorCode: aws.String("ProvisionedThroughputExceededException")},
					},
				}, nil
			}
			return &kinesis.PutRecordsOutput{FailedRecordCount: aws.Int32(0)}, nil
		}
		p := newTestPublisher(client)

		records := []entities.EventRecord{
			testRecord("event_1", "user_1"),
			testRecord("event_2", "user_2"),
		}
		require.NoError(t, p.PublishBatch(context.Background(), records))

		require.Len(t, client.putRecordsCalls, 2)
		retry := client.putRecordsCalls[1].Records
		require.Len(t, retry, 1)
		assert.Contains(t, string(retry[0].Data), `"event_id":"event_2"`)
	})

	t.Run("records still failing after retries fail the call", func(t *testing.T) {
		client := &stubKinesisClient{}
		client.putRecordsFunc = func(call int, input *kinesis.PutRecordsInput) (*kinesis.PutRecordsOutput, error) {
			return &kinesis.PutRecordsOutput{
				FailedRecordCount: aws.Int32(1),
				Records: []types.PutRecordsResultEntry{
					{ErrorCode: aws.String("InternalFailure")},
				},
			}, nil
		}
		p := newTestPublisher(client)

		err := p.PublishBatch(context.Background(), []entities.EventRecord{testRecord("event_1", "user_1")})
		assert.Error(t, err)
		assert.Len(t, client.putRecordsCalls, 3)
	})
}
