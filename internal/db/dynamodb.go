package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/nairaland/internal/models"
)

const TOPICS_TABLE_NAME = "Topics"

// DynamoAPI is the slice of *dynamodb.Client the store needs.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore keeps one item per topic keyed by topic_id, with the comments
// as a nested list attribute. DynamoDB cannot filter on elements of a nested
// list, so everything past the point lookup is a paginated Scan with the
// comment-level predicates evaluated in process.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	if table == "" {
		table = TOPICS_TABLE_NAME
	}
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) FindTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"topic_id": &types.AttributeValueMemberS{Value: topicID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] GetItem for topic %s failed: %w", topicID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var topic models.Topic
	if err := attributevalue.UnmarshalMap(out.Item, &topic); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal topic %s: %w", topicID, err)
	}
	return &topic, nil
}

func (s *DynamoStore) FindTopics(ctx context.Context, filter TopicFilter, limit int) ([]models.Topic, error) {
	topics, err := s.scan(ctx, s.scanInput(filter))
	if err != nil {
		return nil, err
	}
	return filterTopics(topics, filter, limit), nil
}

func (s *DynamoStore) SampleTopics(ctx context.Context, size int) ([]models.Topic, error) {
	topics, err := s.scan(ctx, s.scanInput(TopicFilter{}))
	if err != nil {
		return nil, err
	}
	return sampleTopics(topics, size), nil
}

func (s *DynamoStore) MatchComments(ctx context.Context, filter CommentFilter, limit int) ([]models.CommentMatch, error) {
	topics, err := s.scan(ctx, s.scanInput(TopicFilter{}))
	if err != nil {
		return nil, err
	}
	return matchComments(topics, filter, limit), nil
}

func (s *DynamoStore) Counts(ctx context.Context) (models.Counts, error) {
	topics, err := s.scan(ctx, s.scanInput(TopicFilter{}))
	if err != nil {
		return models.Counts{}, err
	}
	return countTopics(topics), nil
}

func (s *DynamoStore) UserCounts(ctx context.Context) ([]models.UserCount, error) {
	topics, err := s.scan(ctx, s.scanInput(TopicFilter{}))
	if err != nil {
		return nil, err
	}
	return countUsers(topics), nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] DescribeTable %s failed: %w", s.table, err)
	}
	return nil
}

func (s *DynamoStore) Close(context.Context) error {
	return nil
}

// scanInput pushes the top-level predicates of the filter down into a
// FilterExpression. The result is still re-checked in process.
func (s *DynamoStore) scanInput(f TopicFilter) *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	}

	var conditions []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if f.TopicID != "" {
		conditions = append(conditions, "#tid = :tid")
		names["#tid"] = "topic_id"
		values[":tid"] = &types.AttributeValueMemberS{Value: f.TopicID}
	}
	if f.TitleContains != "" {
		conditions = append(conditions, "contains(#title, :title)")
		names["#title"] = "topic"
		values[":title"] = &types.AttributeValueMemberS{Value: f.TitleContains}
	}

	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}
	return input
}

func (s *DynamoStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]models.Topic, error) {
	var topics []models.Topic
	paginator := dynamodb.NewScanPaginator(s.client, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for topics failed: %w", err)
		}
		var topicPage []models.Topic
		err = attributevalue.UnmarshalListOfMaps(out.Items, &topicPage)
		if err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal current topic page", slog.String("error", err.Error()))
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal topic page: %w", err)
		}
		topics = append(topics, topicPage...)
	}
	slog.Debug("[DynamoDB] Scanned topics", slog.Int("count", len(topics)))
	return topics, nil
}
