package models

// Topic is a forum thread as it sits in the dump. TopicID is numeric-looking
// but always stored and compared as a string. Comments are kept in posting
// order.
type Topic struct {
	TopicID   string    `json:"topic_id" bson:"topic_id" dynamodbav:"topic_id"`
	Topic     *string   `json:"topic,omitempty" bson:"topic,omitempty" dynamodbav:"topic,omitempty"`
	URL       *string   `json:"url,omitempty" bson:"url,omitempty" dynamodbav:"url,omitempty"`
	ViewCount *int      `json:"view_count,omitempty" bson:"view_count,omitempty" dynamodbav:"view_count,omitempty"`
	Class     *string   `json:"class_,omitempty" bson:"class_,omitempty" dynamodbav:"class_,omitempty"`
	Comments  []Comment `json:"comments,omitempty" bson:"comments,omitempty" dynamodbav:"comments,omitempty"`
}

// Title returns the topic title or "" when the document has none.
func (t Topic) Title() string {
	if t.Topic == nil {
		return ""
	}
	return *t.Topic
}

// Comment is a single post embedded in a Topic. PageID is the forum page the
// comment appeared on and only means something relative to its parent topic.
type Comment struct {
	Text        *string  `json:"text,omitempty" bson:"text,omitempty" dynamodbav:"text,omitempty"`
	User        *string  `json:"user,omitempty" bson:"user,omitempty" dynamodbav:"user,omitempty"`
	Timestamp   *string  `json:"timestamp,omitempty" bson:"timestamp,omitempty" dynamodbav:"timestamp,omitempty"`
	Attachments []string `json:"attachments,omitempty" bson:"attachments,omitempty" dynamodbav:"attachments,omitempty"`
	Sex         *string  `json:"sex,omitempty" bson:"sex,omitempty" dynamodbav:"sex,omitempty"`
	PageID      *int     `json:"pageId,omitempty" bson:"pageId,omitempty" dynamodbav:"pageId,omitempty"`
}

// Author returns the comment's user handle or "" when unknown.
func (c Comment) Author() string {
	if c.User == nil {
		return ""
	}
	return *c.User
}

// Body returns the comment text or "".
func (c Comment) Body() string {
	if c.Text == nil {
		return ""
	}
	return *c.Text
}

// Page reports the comment's page number and whether it has one.
func (c Comment) Page() (int, bool) {
	if c.PageID == nil {
		return 0, false
	}
	return *c.PageID, true
}

func String(s string) *string { return &s }

func Int(i int) *int { return &i }
