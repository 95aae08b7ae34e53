package db

import (
	"context"

	"github.com/spacesedan/nairaland/internal/models"
)

// TopicFilter selects topics. Every set field must hold; the comment-level
// fields (PageID, User) are existence checks, so a topic qualifies when any
// of its comments is on PageID and any of its comments is by User, not
// necessarily the same one.
type TopicFilter struct {
	TopicID       string
	TitleContains string
	PageID        *int
	User          string
}

// CommentFilter selects individual embedded comments. Unlike TopicFilter it
// is evaluated per comment.
type CommentFilter struct {
	TextContains string
	User         string
	PageID       *int
}

// Store is the read-only view of the topic collection the planner runs on.
// FindTopic returns nil, nil when no topic has the id. A limit of 0 means no
// limit.
type Store interface {
	FindTopic(ctx context.Context, topicID string) (*models.Topic, error)
	FindTopics(ctx context.Context, filter TopicFilter, limit int) ([]models.Topic, error)
	SampleTopics(ctx context.Context, size int) ([]models.Topic, error)
	MatchComments(ctx context.Context, filter CommentFilter, limit int) ([]models.CommentMatch, error)
	Counts(ctx context.Context) (models.Counts, error)
	UserCounts(ctx context.Context) ([]models.UserCount, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
