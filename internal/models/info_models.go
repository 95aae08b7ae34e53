package models

// Counts holds the collection-wide counters. Users is the number of distinct
// comment authors.
type Counts struct {
	Topics   int
	Comments int
	Users    int
}

type UserCount struct {
	User  string `json:"user" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// CommentMatch is a single embedded comment together with the parent topic
// it was found in. Topic.Comments is always empty.
type CommentMatch struct {
	Topic   Topic
	Comment Comment
}

// Info is the payload of GET /info.
type Info struct {
	TopicCount   int    `json:"topic_count"`
	CommentCount int    `json:"comment_count"`
	UserCount    int    `json:"user_count"`
	AsAt         string `json:"as_at"`
}

// UserBreakdown is the payload of GET /info/user.
type UserBreakdown struct {
	Users []UserCount `json:"users"`
	AsAt  string      `json:"as_at"`
}
