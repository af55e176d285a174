package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audiolytics/domain/core/entities"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	// UserEventsIndex serves user_id + timestamp lookups.
	UserEventsIndex = "UserEventsIndex"
	// BookEventsIndex serves book_id + timestamp lookups.
	BookEventsIndex = "BookEventsIndex"

	// maxBatchWriteItems is the BatchWriteItem API limit.
	maxBatchWriteItems = 25

	defaultEventTTL = 90 * 24 * time.Hour
)

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// EventRepository stores playback event records in DynamoDB. The table is
// keyed by event_id, with GSIs for user-level and book-level timelines.
type EventRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// eventItem is how records are laid out in the table. Key attributes are
// flattened from the record; processed_at and ttl are stamped on write.
type eventItem struct {
	entities.EventRecord
	ProcessedAt string `dynamodbav:"processed_at"`
	TTL         int64  `dynamodbav:"ttl,omitempty"`
}

// NewEventRepository creates a DynamoDB-backed event repository.
func NewEventRepository(client API, tableName string, logger *zap.Logger) *EventRepository {
	return &EventRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// SaveEvent writes a single event record.
func (r *EventRepository) SaveEvent(ctx context.Context, record entities.EventRecord) error {
	item, err := attributevalue.MarshalMap(r.toItem(record))
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", record.EventID, err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		r.logger.Error("Failed to store event",
			zap.String("table", r.tableName),
			zap.String("event_id", record.EventID),
			zap.Error(err),
		)
		return pkgerrors.NewDatabaseError(fmt.Sprintf("store event %s", record.EventID), err)
	}

	return nil
}

// SaveEvents writes records in BatchWriteItem chunks, retrying unprocessed
// items once before giving up.
func (r *EventRepository) SaveEvents(ctx context.Context, records []entities.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(r.toItem(record))
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", record.EventID, err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for start := 0; start < len(writeRequests); start += maxBatchWriteItems {
		end := start + maxBatchWriteItems
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		batch := writeRequests[start:end]
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.tableName: batch},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("batch write events", err)
		}

		// One immediate retry for unprocessed items; DynamoDB sheds load
		// this way under throttling.
		if unprocessed := out.UnprocessedItems[r.tableName]; len(unprocessed) > 0 {
			retry, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.tableName: unprocessed},
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("retry unprocessed events", err)
			}
			if remaining := retry.UnprocessedItems[r.tableName]; len(remaining) > 0 {
				return fmt.Errorf("failed to write %d events", len(remaining))
			}
		}
	}

	return nil
}

// GetEventsByUser returns a user's events ordered by timestamp ascending.
func (r *EventRepository) GetEventsByUser(ctx context.Context, userID string, limit int) ([]entities.EventRecord, error) {
	return r.queryIndex(ctx, UserEventsIndex, "user_id", userID, limit)
}

// GetEventsByBook returns a book's events ordered by timestamp ascending.
func (r *EventRepository) GetEventsByBook(ctx context.Context, bookID string, limit int) ([]entities.EventRecord, error) {
	return r.queryIndex(ctx, BookEventsIndex, "book_id", bookID, limit)
}

func (r *EventRepository) queryIndex(ctx context.Context, indexName, keyAttr, keyValue string, limit int) ([]entities.EventRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var records []entities.EventRecord
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query "+indexName, err)
		}

		for _, item := range out.Items {
			var record entities.EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}
			records = append(records, record)
		}

		if limit > 0 && len(records) >= limit {
			return records[:limit], nil
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return records, nil
}

// EnsureTable creates the events table with its secondary indexes if it
// does not exist, waits for it to become active, and enables TTL.
func (r *EventRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err == nil {
		r.logger.Info("DynamoDB table already exists", zap.String("table", r.tableName))
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table %s: %w", r.tableName, err)
	}

	r.logger.Info("Creating DynamoDB table", zap.String("table", r.tableName))
	if _, err := r.client.CreateTable(ctx, r.createTableInput()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	}, 2*time.Minute); err != nil {
		return fmt.Errorf("table %s did not become active: %w", r.tableName, err)
	}

	if _, err := r.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(r.tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("ttl"),
			Enabled:       aws.Bool(true),
		},
	}); err != nil {
		// TTL is an optimization for demo cleanup, not a correctness
		// requirement.
		r.logger.Warn("Failed to enable TTL", zap.String("table", r.tableName), zap.Error(err))
	}

	r.logger.Info("DynamoDB table is active", zap.String("table", r.tableName))
	return nil
}

func (r *EventRepository) createTableInput() *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(r.tableName),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("event_id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("event_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("book_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("timestamp"), AttributeType: types.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(UserEventsIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("timestamp"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(BookEventsIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("book_id"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("timestamp"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	}
}

func (r *EventRepository) toItem(record entities.EventRecord) eventItem {
	now := time.Now().UTC()
	return eventItem{
		EventRecord: record,
		ProcessedAt: now.Format(time.RFC3339),
		TTL:         now.Add(defaultEventTTL).Unix(),
	}
}
