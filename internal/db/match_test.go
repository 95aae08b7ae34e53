package db

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/nairaland/internal/models"
)

func testTopics() []models.Topic {
	return []models.Topic{
		{
			TopicID: "1",
			Topic:   models.String("Lagos Traffic Update"),
			Comments: []models.Comment{
				{User: models.String("a"), PageID: models.Int(1), Text: models.String("gridlock on Ikorodu road")},
				{User: models.String("b"), PageID: models.Int(2), Text: models.String("take the ferry")},
			},
		},
		{
			TopicID: "2",
			Topic:   models.String("Abuja News"),
			Comments: []models.Comment{
				{User: models.String("b"), PageID: models.Int(1), Text: models.String("gridlock in Wuse")},
				{User: models.String("c"), PageID: models.Int(1)},
				{PageID: models.Int(1), Text: models.String("anonymous gridlock")},
			},
		},
		{TopicID: "3"},
	}
}

func TestTopicFilterMatches(t *testing.T) {
	topics := testTopics()
	cases := []struct {
		name   string
		filter TopicFilter
		want   []string
	}{
		{"empty filter", TopicFilter{}, []string{"1", "2", "3"}},
		{"topic id", TopicFilter{TopicID: "2"}, []string{"2"}},
		{"title substring", TopicFilter{TitleContains: "Traffic"}, []string{"1"}},
		{"title is case sensitive", TopicFilter{TitleContains: "traffic"}, nil},
		{"user", TopicFilter{User: "b"}, []string{"1", "2"}},
		{"page", TopicFilter{PageID: models.Int(2)}, []string{"1"}},
		// a never posted on page 2, but topic 1 has a comment by a and one on page 2.
		{"user and page by different comments", TopicFilter{User: "a", PageID: models.Int(2)}, []string{"1"}},
		{"user and page not in same topic", TopicFilter{User: "c", PageID: models.Int(2)}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, topic := range filterTopics(topics, tc.filter, 0) {
				got = append(got, topic.TopicID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFilterTopicsLimit(t *testing.T) {
	got := filterTopics(testTopics(), TopicFilter{}, 2)
	assert.Len(t, got, 2)
}

func TestMatchComments(t *testing.T) {
	topics := testTopics()

	matches := matchComments(topics, CommentFilter{TextContains: "gridlock"}, 0)
	require.Len(t, matches, 3)
	assert.Equal(t, "1", matches[0].Topic.TopicID)
	assert.Nil(t, matches[0].Topic.Comments)
	assert.Equal(t, "Lagos Traffic Update", matches[0].Topic.Title())

	matches = matchComments(topics, CommentFilter{TextContains: "gridlock", User: "b"}, 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "gridlock in Wuse", matches[0].Comment.Body())

	matches = matchComments(topics, CommentFilter{TextContains: "gridlock", PageID: models.Int(2)}, 0)
	assert.Empty(t, matches)

	matches = matchComments(topics, CommentFilter{TextContains: "gridlock"}, 2)
	assert.Len(t, matches, 2)
}

func TestCountTopics(t *testing.T) {
	counts := countTopics(testTopics())
	assert.Equal(t, models.Counts{Topics: 3, Comments: 5, Users: 3}, counts)
}

func TestCountUsersSkipsAnonymous(t *testing.T) {
	assert.Equal(t, []models.UserCount{
		{User: "b", Count: 2},
		{User: "a", Count: 1},
		{User: "c", Count: 1},
	}, countUsers(testTopics()))
}

func TestSampleTopicsDistinct(t *testing.T) {
	topics := testTopics()

	sample := sampleTopics(topics, 2)
	require.Len(t, sample, 2)
	assert.NotEqual(t, sample[0].TopicID, sample[1].TopicID)

	assert.Len(t, sampleTopics(topics, 10), 3)
	assert.Empty(t, sampleTopics(nil, 3))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(testTopics())
	ctx := context.Background()

	topic, err := store.FindTopic(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, "Abuja News", topic.Title())

	topic, err = store.FindTopic(ctx, "404")
	require.NoError(t, err)
	assert.Nil(t, topic)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.FindTopics(cancelled, TopicFilter{}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMemoryStore(t *testing.T) {
	raw, err := json.Marshal(testTopics())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "topics.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	store, err := LoadMemoryStore(path)
	require.NoError(t, err)

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Topics)

	_, err = LoadMemoryStore(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadMemoryStoreMongoExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"_id": {"$oid": "5c8f1e0b9d1e8a3f4c2b1a00"}, "topic_id": "77", "topic": "Jobs",
		 "view_count": 12, "comments": [{"user": "x", "pageId": 0, "attachments": ["a.png"]}]}
	]`), 0o644))

	store, err := LoadMemoryStore(path)
	require.NoError(t, err)

	topic, err := store.FindTopic(context.Background(), "77")
	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, 12, *topic.ViewCount)
	assert.Nil(t, topic.URL)
	page, ok := topic.Comments[0].Page()
	assert.True(t, ok)
	assert.Equal(t, 0, page)
}
