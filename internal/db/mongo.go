package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spacesedan/nairaland/internal/models"
)

// MongoStore runs every query against a single collection of topic documents
// with embedded comment arrays.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) FindTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	var topic models.Topic
	err := s.collection.FindOne(ctx, bson.D{{Key: "topic_id", Value: topicID}}).Decode(&topic)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[MongoStore] Failed to find topic %s: %w", topicID, err)
	}
	return &topic, nil
}

func (s *MongoStore) FindTopics(ctx context.Context, filter TopicFilter, limit int) ([]models.Topic, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, topicFilterDocument(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("[MongoStore] Find topics failed: %w", err)
	}

	var topics []models.Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, fmt.Errorf("[MongoStore] Unable to decode topics: %w", err)
	}
	return topics, nil
}

func (s *MongoStore) SampleTopics(ctx context.Context, size int) ([]models.Topic, error) {
	var topics []models.Topic
	if err := s.aggregate(ctx, samplePipeline(size), &topics); err != nil {
		return nil, fmt.Errorf("[MongoStore] Sample topics failed: %w", err)
	}
	return topics, nil
}

type commentMatchDocument struct {
	Topic   models.Topic   `bson:"topic"`
	Comment models.Comment `bson:"comment"`
}

func (s *MongoStore) MatchComments(ctx context.Context, filter CommentFilter, limit int) ([]models.CommentMatch, error) {
	var docs []commentMatchDocument
	if err := s.aggregate(ctx, commentMatchPipeline(filter, limit), &docs); err != nil {
		return nil, fmt.Errorf("[MongoStore] Comment search failed: %w", err)
	}

	matches := make([]models.CommentMatch, 0, len(docs))
	for _, doc := range docs {
		matches = append(matches, models.CommentMatch{Topic: doc.Topic, Comment: doc.Comment})
	}
	return matches, nil
}

func (s *MongoStore) Counts(ctx context.Context) (models.Counts, error) {
	var totals []struct {
		Topics   int `bson:"topics"`
		Comments int `bson:"comments"`
	}
	if err := s.aggregate(ctx, countsPipeline(), &totals); err != nil {
		return models.Counts{}, fmt.Errorf("[MongoStore] Counting topics failed: %w", err)
	}

	var users []struct {
		Users int `bson:"users"`
	}
	if err := s.aggregate(ctx, distinctUsersPipeline(), &users); err != nil {
		return models.Counts{}, fmt.Errorf("[MongoStore] Counting users failed: %w", err)
	}

	// An empty collection yields no documents from either pipeline.
	var counts models.Counts
	if len(totals) > 0 {
		counts.Topics = totals[0].Topics
		counts.Comments = totals[0].Comments
	}
	if len(users) > 0 {
		counts.Users = users[0].Users
	}
	return counts, nil
}

func (s *MongoStore) UserCounts(ctx context.Context) ([]models.UserCount, error) {
	var counts []models.UserCount
	if err := s.aggregate(ctx, userCountsPipeline(), &counts); err != nil {
		return nil, fmt.Errorf("[MongoStore] User breakdown failed: %w", err)
	}
	SortUserCounts(counts)
	return counts, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	slog.Info("[MongoStore] Disconnecting")
	return s.collection.Database().Client().Disconnect(ctx)
}

func (s *MongoStore) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

// containsPattern turns a literal substring into a case-sensitive $regex.
func containsPattern(text string) bson.D {
	return bson.D{{Key: "$regex", Value: regexp.QuoteMeta(text)}}
}

// topicFilterDocument builds a find filter. Dotted comment paths give array
// membership semantics: each one is satisfied by any element independently.
func topicFilterDocument(f TopicFilter) bson.D {
	filter := bson.D{}
	if f.TopicID != "" {
		filter = append(filter, bson.E{Key: "topic_id", Value: f.TopicID})
	}
	if f.TitleContains != "" {
		filter = append(filter, bson.E{Key: "topic", Value: containsPattern(f.TitleContains)})
	}
	if f.PageID != nil {
		filter = append(filter, bson.E{Key: "comments.pageId", Value: *f.PageID})
	}
	if f.User != "" {
		filter = append(filter, bson.E{Key: "comments.user", Value: f.User})
	}
	return filter
}

func samplePipeline(size int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}},
	}
}

// commentMatchPipeline narrows to candidate topics first, so an index on the
// comment fields can be used, then unwinds and applies the same predicates
// per comment.
func commentMatchPipeline(f CommentFilter, limit int) mongo.Pipeline {
	match := bson.D{}
	if f.TextContains != "" {
		match = append(match, bson.E{Key: "comments.text", Value: containsPattern(f.TextContains)})
	}
	if f.User != "" {
		match = append(match, bson.E{Key: "comments.user", Value: f.User})
	}
	if f.PageID != nil {
		match = append(match, bson.E{Key: "comments.pageId", Value: *f.PageID})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$comments"}},
		{{Key: "$match", Value: match}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 0},
		{Key: "topic", Value: bson.D{
			{Key: "topic_id", Value: "$topic_id"},
			{Key: "topic", Value: "$topic"},
			{Key: "url", Value: "$url"},
			{Key: "view_count", Value: "$view_count"},
			{Key: "class_", Value: "$class_"},
		}},
		{Key: "comment", Value: "$comments"},
	}}})
}

func countsPipeline() mongo.Pipeline {
	commentCount := bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$comments", bson.A{}}}}}}
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "topics", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "comments", Value: bson.D{{Key: "$sum", Value: commentCount}}},
		}}},
	}
}

func authoredCommentsStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$comments"}},
		{{Key: "$match", Value: bson.D{{Key: "comments.user", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}}},
	}
}

func distinctUsersPipeline() mongo.Pipeline {
	return append(authoredCommentsStages(),
		bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$comments.user"}}}},
		bson.D{{Key: "$count", Value: "users"}},
	)
}

func userCountsPipeline() mongo.Pipeline {
	return append(authoredCommentsStages(),
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$comments.user"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	)
}
