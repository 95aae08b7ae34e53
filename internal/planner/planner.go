package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/nairaland/internal/db"
	apierrors "github.com/spacesedan/nairaland/internal/errors"
	"github.com/spacesedan/nairaland/internal/models"
)

const (
	DefaultSampleLimit     = 10
	DefaultTextSearchLimit = 3
	DefaultTitleSearchCap  = 100
	DefaultMaxLimit        = 100

	// DateLayout is how as_at is rendered.
	DateLayout = "2006-01-02"
)

type Options struct {
	// TitleSearchCap bounds topic-title searches. Those ignore the caller's
	// limit.
	TitleSearchCap int
	// MaxLimit clamps every caller-supplied limit.
	MaxLimit int
	Now      func() time.Time
	Logger   *slog.Logger
}

// Planner turns request parameters into store queries and shapes the results.
// It keeps no state between calls.
type Planner struct {
	store          db.Store
	titleSearchCap int
	maxLimit       int
	now            func() time.Time
	logger         *slog.Logger
}

func New(store db.Store, opts Options) *Planner {
	p := &Planner{
		store:          store,
		titleSearchCap: opts.TitleSearchCap,
		maxLimit:       opts.MaxLimit,
		now:            opts.Now,
		logger:         opts.Logger,
	}
	if p.titleSearchCap <= 0 {
		p.titleSearchCap = DefaultTitleSearchCap
	}
	if p.maxLimit <= 0 {
		p.maxLimit = DefaultMaxLimit
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

type UserSearchParams struct {
	TopicID  string
	PageID   *int
	Username string
	Kind     ResultKind
}

type TextSearchParams struct {
	Text          string
	IsTopicSearch bool
	Username      string
	PageID        *int
	// Limit caps comment-text searches; 0 selects DefaultTextSearchLimit.
	Limit int
	Kind  ResultKind
}

// GetTopicByID returns nil, nil when no topic has the id.
func (p *Planner) GetTopicByID(ctx context.Context, topicID string) (*models.TopicView, error) {
	const op = "get_topic"

	topic, err := p.store.FindTopic(ctx, topicID)
	if err != nil {
		return nil, p.storeError(op, err)
	}
	if topic == nil {
		p.logger.Debug("[Planner] Topic not found", slog.String("topic_id", topicID))
		return nil, nil
	}
	view := models.NewTopicView(*topic)
	return &view, nil
}

// SampleTopics returns up to limit distinct random topics. A limit of 0
// selects DefaultSampleLimit.
func (p *Planner) SampleTopics(ctx context.Context, limit int) ([]models.TopicView, error) {
	const op = "sample_topics"

	limit, err := p.resolveLimit(op, limit, DefaultSampleLimit)
	if err != nil {
		return nil, err
	}

	topics, err := p.store.SampleTopics(ctx, limit)
	if err != nil {
		return nil, p.storeError(op, err)
	}
	return models.NewTopicViews(distinctTopics(topics)), nil
}

// SearchByUser finds topics a user commented in, or the user's comments.
// A topic id takes precedence over a page id for the topic-level filter. In
// comments mode the page id, when given, also narrows the comments, and a
// search that matches no topic at all is reported as not found.
func (p *Planner) SearchByUser(ctx context.Context, params UserSearchParams) (Result, error) {
	const op = "search_by_user"

	if params.Username == "" {
		return Result{}, apierrors.NewMissingFieldError(op, "username")
	}

	filter := db.TopicFilter{User: params.Username}
	if params.TopicID != "" {
		filter.TopicID = params.TopicID
	} else if params.PageID != nil {
		filter.PageID = params.PageID
	}

	topics, err := p.store.FindTopics(ctx, filter, 0)
	if err != nil {
		return Result{}, p.storeError(op, err)
	}

	if params.Kind == KindTopics {
		return TopicsResult(models.NewTopicViews(topics)), nil
	}

	if len(topics) == 0 {
		return Result{}, apierrors.NewNotFoundError(op)
	}

	// The store filter only proves some comment matched; pick out the ones
	// that actually do.
	own := db.CommentFilter{User: params.Username, PageID: params.PageID}
	return CommentsResult(flattenComments(topics, own)), nil
}

// SearchByText matches text as a literal, case-sensitive substring, either
// against topic titles or against comment bodies.
func (p *Planner) SearchByText(ctx context.Context, params TextSearchParams) (Result, error) {
	const op = "search_by_text"

	if params.Text == "" {
		return Result{}, apierrors.NewMissingFieldError(op, "text")
	}

	if params.IsTopicSearch {
		return p.searchTitles(ctx, op, params)
	}

	limit, err := p.resolveLimit(op, params.Limit, DefaultTextSearchLimit)
	if err != nil {
		return Result{}, err
	}

	matches, err := p.store.MatchComments(ctx, db.CommentFilter{
		TextContains: params.Text,
		User:         params.Username,
		PageID:       params.PageID,
	}, limit)
	if err != nil {
		return Result{}, p.storeError(op, err)
	}

	if params.Kind == KindComments {
		comments := make([]models.CommentView, 0, len(matches))
		for _, m := range matches {
			comments = append(comments, models.NewCommentView(m.Comment))
		}
		return CommentsResult(comments), nil
	}

	topics := make([]models.TopicView, 0, len(matches))
	for _, m := range matches {
		view := models.NewTopicView(m.Topic)
		view.Comments = []models.CommentView{models.NewCommentView(m.Comment)}
		topics = append(topics, view)
	}
	return TopicsResult(topics), nil
}

func (p *Planner) searchTitles(ctx context.Context, op string, params TextSearchParams) (Result, error) {
	topics, err := p.store.FindTopics(ctx, db.TopicFilter{TitleContains: params.Text}, p.titleSearchCap)
	if err != nil {
		return Result{}, p.storeError(op, err)
	}

	if params.Kind == KindTopics {
		return TopicsResult(models.NewTopicViews(topics)), nil
	}
	narrow := db.CommentFilter{User: params.Username, PageID: params.PageID}
	return CommentsResult(flattenComments(topics, narrow)), nil
}

// GetAggregateInfo recomputes the collection counters on every call.
func (p *Planner) GetAggregateInfo(ctx context.Context) (models.Info, error) {
	counts, err := p.store.Counts(ctx)
	if err != nil {
		return models.Info{}, p.storeError("aggregate_info", err)
	}
	return models.Info{
		TopicCount:   counts.Topics,
		CommentCount: counts.Comments,
		UserCount:    counts.Users,
		AsAt:         p.now().Format(DateLayout),
	}, nil
}

func (p *Planner) GetUserBreakdown(ctx context.Context) (models.UserBreakdown, error) {
	counts, err := p.store.UserCounts(ctx)
	if err != nil {
		return models.UserBreakdown{}, p.storeError("user_breakdown", err)
	}
	if counts == nil {
		counts = []models.UserCount{}
	}
	return models.UserBreakdown{
		Users: counts,
		AsAt:  p.now().Format(DateLayout),
	}, nil
}

func (p *Planner) resolveLimit(op string, limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, apierrors.NewInvalidFieldError(op, "limit", errors.New("limit must be positive"))
	case limit == 0:
		limit = fallback
	}
	if limit > p.maxLimit {
		limit = p.maxLimit
	}
	return limit, nil
}

func (p *Planner) storeError(op string, err error) error {
	p.logger.Error("[Planner] Store query failed",
		slog.String("operation", op),
		slog.String("error", err.Error()))
	return apierrors.NewStoreError(op, err)
}

func flattenComments(topics []models.Topic, filter db.CommentFilter) []models.CommentView {
	comments := []models.CommentView{}
	for _, t := range topics {
		for _, c := range t.Comments {
			if filter.Matches(c) {
				comments = append(comments, models.NewCommentView(c))
			}
		}
	}
	return comments
}

// distinctTopics drops repeated topic ids; $sample may return a document
// more than once.
func distinctTopics(topics []models.Topic) []models.Topic {
	seen := make(map[string]struct{}, len(topics))
	out := make([]models.Topic, 0, len(topics))
	for _, t := range topics {
		if _, ok := seen[t.TopicID]; ok {
			continue
		}
		seen[t.TopicID] = struct{}{}
		out = append(out, t)
	}
	return out
}
