package db

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/spacesedan/nairaland/internal/models"
)

// Matches evaluates the filter against a single topic in process.
func (f TopicFilter) Matches(t models.Topic) bool {
	if f.TopicID != "" && t.TopicID != f.TopicID {
		return false
	}
	if f.TitleContains != "" && !strings.Contains(t.Title(), f.TitleContains) {
		return false
	}
	if f.PageID != nil && !anyComment(t.Comments, func(c models.Comment) bool {
		page, ok := c.Page()
		return ok && page == *f.PageID
	}) {
		return false
	}
	if f.User != "" && !anyComment(t.Comments, func(c models.Comment) bool {
		return c.Author() == f.User
	}) {
		return false
	}
	return true
}

func (f CommentFilter) Matches(c models.Comment) bool {
	if f.TextContains != "" && !strings.Contains(c.Body(), f.TextContains) {
		return false
	}
	if f.User != "" && c.Author() != f.User {
		return false
	}
	if f.PageID != nil {
		page, ok := c.Page()
		if !ok || page != *f.PageID {
			return false
		}
	}
	return true
}

func anyComment(comments []models.Comment, pred func(models.Comment) bool) bool {
	for _, c := range comments {
		if pred(c) {
			return true
		}
	}
	return false
}

func filterTopics(topics []models.Topic, f TopicFilter, limit int) []models.Topic {
	var out []models.Topic
	for _, t := range topics {
		if limit > 0 && len(out) >= limit {
			break
		}
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func matchComments(topics []models.Topic, f CommentFilter, limit int) []models.CommentMatch {
	var out []models.CommentMatch
	for _, t := range topics {
		for _, c := range t.Comments {
			if limit > 0 && len(out) >= limit {
				return out
			}
			if f.Matches(c) {
				out = append(out, models.CommentMatch{Topic: topicContext(t), Comment: c})
			}
		}
	}
	return out
}

// topicContext strips the comments off a topic.
func topicContext(t models.Topic) models.Topic {
	t.Comments = nil
	return t
}

// sampleTopics picks up to size distinct topics uniformly at random.
func sampleTopics(topics []models.Topic, size int) []models.Topic {
	if size > len(topics) {
		size = len(topics)
	}
	out := make([]models.Topic, 0, size)
	for _, i := range rand.Perm(len(topics))[:size] {
		out = append(out, topics[i])
	}
	return out
}

func countTopics(topics []models.Topic) models.Counts {
	users := make(map[string]struct{})
	counts := models.Counts{Topics: len(topics)}
	for _, t := range topics {
		counts.Comments += len(t.Comments)
		for _, c := range t.Comments {
			if author := c.Author(); author != "" {
				users[author] = struct{}{}
			}
		}
	}
	counts.Users = len(users)
	return counts
}

func countUsers(topics []models.Topic) []models.UserCount {
	perUser := make(map[string]int)
	for _, t := range topics {
		for _, c := range t.Comments {
			if author := c.Author(); author != "" {
				perUser[author]++
			}
		}
	}
	counts := make([]models.UserCount, 0, len(perUser))
	for user, n := range perUser {
		counts = append(counts, models.UserCount{User: user, Count: n})
	}
	SortUserCounts(counts)
	return counts
}

// SortUserCounts orders by count descending, then by user name.
func SortUserCounts(counts []models.UserCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].User < counts[j].User
	})
}
