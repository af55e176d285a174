package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"audiolytics/domain/core/entities"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDynamoClient struct {
	putItemCalls    []*dynamodb.PutItemInput
	batchWriteCalls []*dynamodb.BatchWriteItemInput
	queryCalls      []*dynamodb.QueryInput

	putItemErr     error
	batchWriteFunc func(call int, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
	queryFunc      func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
}

func (s *stubDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	s.putItemCalls = append(s.putItemCalls, params)
	if s.putItemErr != nil {
		return nil, s.putItemErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (s *stubDynamoClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	call := len(s.batchWriteCalls)
	s.batchWriteCalls = append(s.batchWriteCalls, params)
	if s.batchWriteFunc != nil {
		return s.batchWriteFunc(call, params)
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (s *stubDynamoClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	call := len(s.queryCalls)
	s.queryCalls = append(s.queryCalls, params)
	if s.queryFunc != nil {
		return s.queryFunc(call, params)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (s *stubDynamoClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	return &dynamodb.CreateTableOutput{}, nil
}

func (s *stubDynamoClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func (s *stubDynamoClient) UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func storedRecord(eventID string) entities.EventRecord {
	return entities.EventRecord{
		EventID:   eventID,
		UserID:    "user_1",
		BookID:    "book_1",
		EventType: "RESUME",
		Timestamp: "2024-06-01T12:00:00Z",
		Position:  250,
		Chapter:   3,
	}
}

func eventItemPage(eventIDs ...string) []map[string]types.AttributeValue {
	items := make([]map[string]types.AttributeValue, 0, len(eventIDs))
	for _, id := range eventIDs {
		items = append(items, map[string]types.AttributeValue{
			"event_id":   &types.AttributeValueMemberS{Value: id},
			"user_id":    &types.AttributeValueMemberS{Value: "user_1"},
			"book_id":    &types.AttributeValueMemberS{Value: "book_1"},
			"event_type": &types.AttributeValueMemberS{Value: "RESUME"},
			"timestamp":  &types.AttributeValueMemberS{Value: "2024-06-01T12:00:00Z"},
			"position":   &types.AttributeValueMemberN{Value: "250"},
			"chapter":    &types.AttributeValueMemberN{Value: "3"},
		})
	}
	return items
}

func TestEventRepository_SaveEvent(t *testing.T) {
	client := &stubDynamoClient{}
	repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

	require.NoError(t, repo.SaveEvent(context.Background(), storedRecord("event_1")))

	require.Len(t, client.putItemCalls, 1)
	call := client.putItemCalls[0]
	assert.Equal(t, "PlaybackEvents", aws.ToString(call.TableName))

	id, ok := call.Item["event_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "event_1", id.Value)

	// Write-time stamps land next to the record attributes.
	assert.Contains(t, call.Item, "processed_at")
	assert.Contains(t, call.Item, "ttl")
}

func TestEventRepository_SaveEvent_Failure(t *testing.T) {
	client := &stubDynamoClient{putItemErr: errors.New("throttled")}
	repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

	err := repo.SaveEvent(context.Background(), storedRecord("event_1"))
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeDatabase, appErr.Type)
	assert.ErrorIs(t, err, client.putItemErr)
}

func TestEventRepository_SaveEvents(t *testing.T) {
	t.Run("chunks at the batch write limit", func(t *testing.T) {
		client := &stubDynamoClient{}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		records := make([]entities.EventRecord, 30)
		for i := range records {
			records[i] = storedRecord(fmt.Sprintf("event_%d", i))
		}
		require.NoError(t, repo.SaveEvents(context.Background(), records))

		require.Len(t, client.batchWriteCalls, 2)
		assert.Len(t, client.batchWriteCalls[0].RequestItems["PlaybackEvents"], 25)
		assert.Len(t, client.batchWriteCalls[1].RequestItems["PlaybackEvents"], 5)
	})

	t.Run("unprocessed items are retried once", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.batchWriteFunc = func(call int, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			if call == 0 {
				batch := input.RequestItems["PlaybackEvents"]
				return &dynamodb.BatchWriteItemOutput{
					UnprocessedItems: map[string][]types.WriteRequest{
						"PlaybackEvents": batch[:1],
					},
				}, nil
			}
			return &dynamodb.BatchWriteItemOutput{}, nil
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		records := []entities.EventRecord{storedRecord("event_1"), storedRecord("event_2")}
		require.NoError(t, repo.SaveEvents(context.Background(), records))

		require.Len(t, client.batchWriteCalls, 2)
		assert.Len(t, client.batchWriteCalls[1].RequestItems["PlaybackEvents"], 1)
	})

	t.Run("items unprocessed after the retry fail the call", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.batchWriteFunc = func(call int, input *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
			return &dynamodb.BatchWriteItemOutput{
				UnprocessedItems: map[string][]types.WriteRequest{
					"PlaybackEvents": input.RequestItems["PlaybackEvents"],
				},
			}, nil
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		err := repo.SaveEvents(context.Background(), []entities.EventRecord{storedRecord("event_1")})
		assert.Error(t, err)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		client := &stubDynamoClient{}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		require.NoError(t, repo.SaveEvents(context.Background(), nil))
		assert.Empty(t, client.batchWriteCalls)
	})
}

func TestEventRepository_GetEventsByUser(t *testing.T) {
	t.Run("queries the user index ascending", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.queryFunc = func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: eventItemPage("event_1", "event_2")}, nil
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		records, err := repo.GetEventsByUser(context.Background(), "user_1", 0)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "event_1", records[0].EventID)

		require.Len(t, client.queryCalls, 1)
		call := client.queryCalls[0]
		assert.Equal(t, UserEventsIndex, aws.ToString(call.IndexName))
		assert.Equal(t, "user_id", call.ExpressionAttributeNames["#k"])
		assert.True(t, aws.ToBool(call.ScanIndexForward))
	})

	t.Run("follows pagination across pages", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.queryFunc = func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			if call == 0 {
				return &dynamodb.QueryOutput{
					Items: eventItemPage("event_1"),
					LastEvaluatedKey: map[string]types.AttributeValue{
						"event_id": &types.AttributeValueMemberS{Value: "event_1"},
					},
				}, nil
			}
			return &dynamodb.QueryOutput{Items: eventItemPage("event_2")}, nil
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		records, err := repo.GetEventsByUser(context.Background(), "user_1", 0)
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Len(t, client.queryCalls, 2)
		assert.NotNil(t, client.queryCalls[1].ExclusiveStartKey)
	})

	t.Run("query failures surface as database errors", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.queryFunc = func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return nil, errors.New("index unavailable")
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		_, err := repo.GetEventsByUser(context.Background(), "user_1", 0)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	})

	t.Run("truncates to the requested limit", func(t *testing.T) {
		client := &stubDynamoClient{}
		client.queryFunc = func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: eventItemPage("event_1", "event_2", "event_3")}, nil
		}
		repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

		records, err := repo.GetEventsByUser(context.Background(), "user_1", 2)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestEventRepository_GetEventsByBook(t *testing.T) {
	client := &stubDynamoClient{}
	client.queryFunc = func(call int, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{Items: eventItemPage("event_1")}, nil
	}
	repo := NewEventRepository(client, "PlaybackEvents", zap.NewNop())

	records, err := repo.GetEventsByBook(context.Background(), "book_1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	call := client.queryCalls[0]
	assert.Equal(t, BookEventsIndex, aws.ToString(call.IndexName))
	assert.Equal(t, "book_id", call.ExpressionAttributeNames["#k"])
}
