package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicViewListsAlwaysPresent(t *testing.T) {
	view := NewTopicView(Topic{TopicID: "5", Topic: String("Jobs")})

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic_id": "5", "topic": "Jobs", "comments": []}`, string(raw))
}

func TestCommentViewOmitsAbsentFields(t *testing.T) {
	view := NewCommentView(Comment{User: String("seun"), PageID: Int(0)})

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user": "seun", "pageId": 0, "attachments": []}`, string(raw))
}

func TestTopicViewKeepsCommentOrder(t *testing.T) {
	topic := Topic{
		TopicID:   "9",
		ViewCount: Int(0),
		Comments: []Comment{
			{Text: String("first"), Attachments: []string{"x.jpg"}},
			{Text: String("second")},
		},
	}

	view := NewTopicView(topic)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "first", *view.Comments[0].Text)
	assert.Equal(t, []string{"x.jpg"}, view.Comments[0].Attachments)
	assert.Equal(t, "second", *view.Comments[1].Text)
	assert.Equal(t, 0, *view.ViewCount)
}

func TestNewTopicViewsEmpty(t *testing.T) {
	raw, err := json.Marshal(NewTopicViews(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
