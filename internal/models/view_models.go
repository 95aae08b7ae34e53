package models

// TopicView and CommentView are the only two shapes handed to clients. Absent
// scalar fields stay absent; list fields are always present.
type TopicView struct {
	Class     *string       `json:"class_,omitempty"`
	TopicID   string        `json:"topic_id"`
	Topic     *string       `json:"topic,omitempty"`
	URL       *string       `json:"url,omitempty"`
	ViewCount *int          `json:"view_count,omitempty"`
	Comments  []CommentView `json:"comments"`
}

type CommentView struct {
	Text        *string  `json:"text,omitempty"`
	User        *string  `json:"user,omitempty"`
	Timestamp   *string  `json:"timestamp,omitempty"`
	Attachments []string `json:"attachments"`
	Sex         *string  `json:"sex,omitempty"`
	PageID      *int     `json:"pageId,omitempty"`
}

func NewTopicView(t Topic) TopicView {
	return TopicView{
		Class:     t.Class,
		TopicID:   t.TopicID,
		Topic:     t.Topic,
		URL:       t.URL,
		ViewCount: t.ViewCount,
		Comments:  NewCommentViews(t.Comments),
	}
}

func NewTopicViews(topics []Topic) []TopicView {
	views := make([]TopicView, 0, len(topics))
	for _, t := range topics {
		views = append(views, NewTopicView(t))
	}
	return views
}

func NewCommentView(c Comment) CommentView {
	attachments := c.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return CommentView{
		Text:        c.Text,
		User:        c.User,
		Timestamp:   c.Timestamp,
		Attachments: attachments,
		Sex:         c.Sex,
		PageID:      c.PageID,
	}
}

func NewCommentViews(comments []Comment) []CommentView {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, NewCommentView(c))
	}
	return views
}
