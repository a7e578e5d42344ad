package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client the cache uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// NewDynamoDBClient loads the default AWS configuration for region. A
// non-empty endpoint points the client at a local DynamoDB.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// DynamoDBService stores entries at pk=CACHE#<key>, sk=DATA and keeps an
// inverted index of pk=TAG#<tag>, sk=CACHE#<key> items.
type DynamoDBService struct {
	client     DynamoDBAPI
	table      string
	retryDelay time.Duration
}

const (
	maxBatchAttempts  = 5
	defaultRetryDelay = 50 * time.Millisecond
)

func NewDynamoDBService(client DynamoDBAPI, table string) *DynamoDBService {
	return &DynamoDBService{client: client, table: table, retryDelay: defaultRetryDelay}
}

// EnsureTable creates the cache table when it does not exist.
func (s *DynamoDBService) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}

	slog.Info("creating dynamodb cache table", "table", s.table)
	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *DynamoDBService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	now := time.Now()
	ttl := now.Add(duration).Unix()

	if err := s.put(ctx, Entry{
		PK:        CachePartitionPrefix + key,
		SK:        CacheSortKey,
		Data:      data,
		Tags:      tags,
		TTL:       ttl,
		CreatedAt: now.Unix(),
	}); err != nil {
		return err
	}

	for _, tag := range tags {
		if err := s.put(ctx, TagEntry{
			PK:        TagPartitionPrefix + tag,
			SK:        CachePartitionPrefix + key,
			TTL:       ttl,
			CreatedAt: now.Unix(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamoDBService) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(CachePartitionPrefix+key, CacheSortKey),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var entry Entry
	if err := attributevalue.UnmarshalMap(out.Item, &entry); err != nil {
		return nil, err
	}
	if entry.IsExpired() {
		return nil, nil
	}
	return entry.Data, nil
}

func (s *DynamoDBService) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagPK := TagPartitionPrefix + tag
		entries, err := s.tagEntries(ctx, tagPK)
		if err != nil {
			return err
		}

		requests := make([]types.WriteRequest, 0, 2*len(entries))
		for _, te := range entries {
			requests = append(requests,
				types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: itemKey(te.SK, CacheSortKey)}},
				types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: itemKey(tagPK, te.SK)}},
			)
		}
		if err := s.batchWrite(ctx, requests); err != nil {
			return fmt.Errorf("invalidate tag %s: %w", tag, err)
		}
	}
	return nil
}

// tagEntries reads every page of the tag's index partition.
func (s *DynamoDBService) tagEntries(ctx context.Context, tagPK string) ([]TagEntry, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: tagPK},
		},
	})

	var entries []TagEntry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var pageEntries []TagEntry
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageEntries); err != nil {
			return nil, err
		}
		entries = append(entries, pageEntries...)
	}
	return entries, nil
}

// batchWrite sends requests in chunks of 25, the BatchWriteItem limit, and
// resends unprocessed items with exponential backoff.
func (s *DynamoDBService) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += 25 {
		end := min(start+25, len(requests))
		pending := requests[start:end]
		delay := s.retryDelay

		for attempt := 1; len(pending) > 0; attempt++ {
			if attempt > maxBatchAttempts {
				return fmt.Errorf("%d delete requests still unprocessed after %d attempts", len(pending), maxBatchAttempts)
			}
			if attempt > 1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
				delay *= 2
			}

			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{s.table: pending},
			})
			if err != nil {
				return err
			}
			pending = out.UnprocessedItems[s.table]
		}
	}
	return nil
}

func (s *DynamoDBService) put(ctx context.Context, v interface{}) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return err
}

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}
