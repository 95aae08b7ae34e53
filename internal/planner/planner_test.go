package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/nairaland/internal/db"
	apierrors "github.com/spacesedan/nairaland/internal/errors"
	"github.com/spacesedan/nairaland/internal/models"
)

func comment(user string, page int, text string) models.Comment {
	return models.Comment{
		User:   models.String(user),
		PageID: models.Int(page),
		Text:   models.String(text),
	}
}

func fixtureTopics() []models.Topic {
	return []models.Topic{
		{
			TopicID:   "101",
			Topic:     models.String("Lagos Traffic Update"),
			URL:       models.String("https://www.nairaland.com/101"),
			ViewCount: models.Int(40),
			Class:     models.String("politics"),
			Comments: []models.Comment{
				comment("a", 1, "Third mainland bridge is blocked"),
				comment("b", 1, "Use the Lagos lagoon ferry"),
				comment("a", 2, "Still blocked"),
			},
		},
		{
			TopicID: "102",
			Topic:   models.String("Abuja News"),
			Comments: []models.Comment{
				comment("b", 1, "Quiet day in Abuja"),
				comment("c", 2, "Lagos is busier"),
				comment("d", 2, "Agreed"),
				comment("c", 3, "Traffic is everywhere"),
				comment("b", 3, "Ferry from Lagos"),
			},
		},
	}
}

func newTestPlanner(t *testing.T, topics []models.Topic) *Planner {
	t.Helper()
	now := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	return New(db.NewMemoryStore(topics), Options{
		Now: func() time.Time { return now },
	})
}

type failingStore struct {
	db.MemoryStore
	err error
}

func (f *failingStore) FindTopic(context.Context, string) (*models.Topic, error) {
	return nil, f.err
}

func (f *failingStore) FindTopics(context.Context, db.TopicFilter, int) ([]models.Topic, error) {
	return nil, f.err
}

func (f *failingStore) Counts(context.Context) (models.Counts, error) {
	return models.Counts{}, f.err
}

func requireAPIError(t *testing.T, err error, kind apierrors.ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apierrors.As(err)
	require.True(t, ok, "expected an APIError, got %T", err)
	assert.Equal(t, kind, apiErr.Kind)
	assert.Equal(t, code, apiErr.Code)
}

func TestGetTopicByID(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())
	ctx := context.Background()

	for _, topic := range fixtureTopics() {
		view, err := p.GetTopicByID(ctx, topic.TopicID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, models.NewTopicView(topic), *view)
	}

	view, err := p.GetTopicByID(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestGetTopicByIDComparesAsString(t *testing.T) {
	p := newTestPlanner(t, []models.Topic{{TopicID: "0101"}})

	view, err := p.GetTopicByID(context.Background(), "101")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestSampleTopics(t *testing.T) {
	topics := fixtureTopics()
	for i := 0; i < 20; i++ {
		topics = append(topics, models.Topic{TopicID: string(rune('A' + i))})
	}
	p := newTestPlanner(t, topics)
	ctx := context.Background()

	sample, err := p.SampleTopics(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, sample, 5)
	assertDistinct(t, sample)

	sample, err = p.SampleTopics(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, sample, DefaultSampleLimit)
	assertDistinct(t, sample)
}

func TestSampleTopicsSmallCollection(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	sample, err := p.SampleTopics(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, sample, 2)
	assertDistinct(t, sample)
}

func TestSampleTopicsRejectsNegativeLimit(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	_, err := p.SampleTopics(context.Background(), -1)
	requireAPIError(t, err, apierrors.KindValidation, apierrors.CodeInvalidField)
}

func TestSampleTopicsClampsLimit(t *testing.T) {
	var topics []models.Topic
	for i := 0; i < 30; i++ {
		topics = append(topics, models.Topic{TopicID: string(rune('a' + i))})
	}
	p := New(db.NewMemoryStore(topics), Options{MaxLimit: 7})

	sample, err := p.SampleTopics(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, sample, 7)
}

func TestDistinctTopics(t *testing.T) {
	out := distinctTopics([]models.Topic{{TopicID: "1"}, {TopicID: "2"}, {TopicID: "1"}})
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].TopicID)
	assert.Equal(t, "2", out[1].TopicID)
}

func assertDistinct(t *testing.T, views []models.TopicView) {
	t.Helper()
	seen := map[string]bool{}
	for _, v := range views {
		assert.False(t, seen[v.TopicID], "duplicate topic %s", v.TopicID)
		seen[v.TopicID] = true
	}
}

func TestSearchByUserTopics(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())
	ctx := context.Background()

	res, err := p.SearchByUser(ctx, UserSearchParams{Username: "b"})
	require.NoError(t, err)
	assert.Equal(t, KindTopics, res.Kind)
	assert.Len(t, res.Topics, 2)

	res, err = p.SearchByUser(ctx, UserSearchParams{Username: "c"})
	require.NoError(t, err)
	require.Len(t, res.Topics, 1)
	assert.Equal(t, "102", res.Topics[0].TopicID)

	res, err = p.SearchByUser(ctx, UserSearchParams{Username: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, res.Topics)
	assert.Empty(t, res.Topics)
}

func TestSearchByUserTopicIDTakesPrecedence(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	// Page 3 exists only in topic 102, but the topic id wins.
	res, err := p.SearchByUser(context.Background(), UserSearchParams{
		Username: "b",
		TopicID:  "101",
		PageID:   models.Int(3),
	})
	require.NoError(t, err)
	require.Len(t, res.Topics, 1)
	assert.Equal(t, "101", res.Topics[0].TopicID)
}

func TestSearchByUserComments(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())
	ctx := context.Background()

	res, err := p.SearchByUser(ctx, UserSearchParams{Username: "a", Kind: KindComments})
	require.NoError(t, err)
	assert.Equal(t, KindComments, res.Kind)
	require.Len(t, res.Comments, 2)
	for _, c := range res.Comments {
		assert.Equal(t, "a", *c.User)
	}

	res, err = p.SearchByUser(ctx, UserSearchParams{Username: "b", PageID: models.Int(3), Kind: KindComments})
	require.NoError(t, err)
	require.Len(t, res.Comments, 1)
	assert.Equal(t, "Ferry from Lagos", *res.Comments[0].Text)
}

func TestSearchByUserCommentsIsElementWise(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	// Topic 101 has a comment on page 2 and a comment by b, but b never
	// posted on page 2 there.
	res, err := p.SearchByUser(context.Background(), UserSearchParams{
		Username: "b",
		PageID:   models.Int(2),
		Kind:     KindComments,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Comments)
}

func TestSearchByUserCommentsNotFound(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	_, err := p.SearchByUser(context.Background(), UserSearchParams{Username: "nobody", Kind: KindComments})
	requireAPIError(t, err, apierrors.KindNotFound, apierrors.CodeNotFound)
}

func TestSearchByUserRequiresUsername(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	_, err := p.SearchByUser(context.Background(), UserSearchParams{})
	requireAPIError(t, err, apierrors.KindValidation, apierrors.CodeMissingField)
}

func TestSearchByTextRequiresText(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	for _, topic := range []bool{true, false} {
		_, err := p.SearchByText(context.Background(), TextSearchParams{IsTopicSearch: topic, Limit: 5})
		requireAPIError(t, err, apierrors.KindValidation, apierrors.CodeMissingField)
		assert.Contains(t, err.Error(), "Missing field ['text']")
	}
}

func TestSearchByTextTitles(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())
	ctx := context.Background()

	res, err := p.SearchByText(ctx, TextSearchParams{Text: "Lagos", IsTopicSearch: true})
	require.NoError(t, err)
	require.Len(t, res.Topics, 1)
	assert.Equal(t, "Lagos Traffic Update", *res.Topics[0].Topic)

	res, err = p.SearchByText(ctx, TextSearchParams{Text: "lagos", IsTopicSearch: true})
	require.NoError(t, err)
	assert.Empty(t, res.Topics)

	res, err = p.SearchByText(ctx, TextSearchParams{Text: "L.gos", IsTopicSearch: true})
	require.NoError(t, err)
	assert.Empty(t, res.Topics)
}

func TestSearchByTextTitlesIgnoresLimit(t *testing.T) {
	var topics []models.Topic
	for i := 0; i < 8; i++ {
		topics = append(topics, models.Topic{TopicID: string(rune('a' + i)), Topic: models.String("Lagos")})
	}
	p := New(db.NewMemoryStore(topics), Options{TitleSearchCap: 6})

	res, err := p.SearchByText(context.Background(), TextSearchParams{Text: "Lagos", IsTopicSearch: true, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Topics, 6)
}

func TestSearchByTextTitlesAsComments(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	res, err := p.SearchByText(context.Background(), TextSearchParams{
		Text:          "Lagos",
		IsTopicSearch: true,
		Username:      "a",
		Kind:          KindComments,
	})
	require.NoError(t, err)
	require.Len(t, res.Comments, 2)
	for _, c := range res.Comments {
		assert.Equal(t, "a", *c.User)
	}
}

func TestSearchByTextComments(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())
	ctx := context.Background()

	res, err := p.SearchByText(ctx, TextSearchParams{Text: "Lagos", Kind: KindComments, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Comments, 3)

	res, err = p.SearchByText(ctx, TextSearchParams{Text: "Lagos", Kind: KindComments})
	require.NoError(t, err)
	assert.Len(t, res.Comments, DefaultTextSearchLimit)

	res, err = p.SearchByText(ctx, TextSearchParams{Text: "Lagos", Username: "b", PageID: models.Int(3), Kind: KindComments})
	require.NoError(t, err)
	require.Len(t, res.Comments, 1)
	assert.Equal(t, "Ferry from Lagos", *res.Comments[0].Text)
}

func TestSearchByTextCommentsInTopicContext(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	res, err := p.SearchByText(context.Background(), TextSearchParams{Text: "blocked", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Topics, 2)
	for _, topic := range res.Topics {
		assert.Equal(t, "101", topic.TopicID)
		assert.Equal(t, "Lagos Traffic Update", *topic.Topic)
		require.Len(t, topic.Comments, 1)
		assert.Contains(t, *topic.Comments[0].Text, "blocked")
	}
}

func TestGetAggregateInfo(t *testing.T) {
	topics := []models.Topic{
		{TopicID: "1", Comments: []models.Comment{
			{User: models.String("a")}, {User: models.String("b")}, {User: models.String("a")},
		}},
		{TopicID: "2", Comments: []models.Comment{
			{User: models.String("b")}, {User: models.String("c")}, {User: models.String("d")},
			{User: models.String("c")}, {User: models.String("d")},
		}},
	}
	p := newTestPlanner(t, topics)

	info, err := p.GetAggregateInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Info{TopicCount: 2, CommentCount: 8, UserCount: 4, AsAt: "2024-03-09"}, info)

	again, err := p.GetAggregateInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, info, again)
}

func TestGetUserBreakdown(t *testing.T) {
	p := newTestPlanner(t, fixtureTopics())

	breakdown, err := p.GetUserBreakdown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", breakdown.AsAt)
	assert.Equal(t, []models.UserCount{
		{User: "b", Count: 3},
		{User: "a", Count: 2},
		{User: "c", Count: 2},
		{User: "d", Count: 1},
	}, breakdown.Users)
}

func TestGetUserBreakdownEmptyStore(t *testing.T) {
	p := newTestPlanner(t, nil)

	breakdown, err := p.GetUserBreakdown(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, breakdown.Users)
	assert.Empty(t, breakdown.Users)
}

func TestStoreErrorsPropagate(t *testing.T) {
	cause := errors.New("connection reset by peer")
	p := New(&failingStore{err: cause}, Options{})
	ctx := context.Background()

	_, err := p.GetTopicByID(ctx, "1")
	requireAPIError(t, err, apierrors.KindStore, apierrors.CodeStoreFailure)
	assert.ErrorIs(t, err, cause)

	_, err = p.SearchByUser(ctx, UserSearchParams{Username: "a", Kind: KindComments})
	requireAPIError(t, err, apierrors.KindStore, apierrors.CodeStoreFailure)
	assert.ErrorIs(t, err, cause)

	_, err = p.GetAggregateInfo(ctx)
	assert.ErrorIs(t, err, cause)
}

func TestParseResultKind(t *testing.T) {
	for in, want := range map[string]ResultKind{"": KindTopics, "topics": KindTopics, "comments": KindComments} {
		got, err := ParseResultKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseResultKind("users")
	assert.Error(t, err)
}
