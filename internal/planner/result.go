package planner

import (
	"fmt"

	"github.com/spacesedan/nairaland/internal/models"
)

// ResultKind selects whether an operation returns whole topics or flattened
// standalone comments.
type ResultKind int

const (
	KindTopics ResultKind = iota
	KindComments
)

func (k ResultKind) String() string {
	if k == KindComments {
		return "comments"
	}
	return "topics"
}

// ParseResultKind maps the wire value of the `r` parameter. An empty value
// selects topics.
func ParseResultKind(s string) (ResultKind, error) {
	switch s {
	case "", "topics":
		return KindTopics, nil
	case "comments":
		return KindComments, nil
	default:
		return KindTopics, fmt.Errorf("unknown result kind %q", s)
	}
}

// Result holds exactly one of Topics or Comments, as named by Kind. The
// selected slice is never nil.
type Result struct {
	Kind     ResultKind
	Topics   []models.TopicView
	Comments []models.CommentView
}

func TopicsResult(topics []models.TopicView) Result {
	if topics == nil {
		topics = []models.TopicView{}
	}
	return Result{Kind: KindTopics, Topics: topics}
}

func CommentsResult(comments []models.CommentView) Result {
	if comments == nil {
		comments = []models.CommentView{}
	}
	return Result{Kind: KindComments, Comments: comments}
}
