package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spacesedan/nairaland/internal/models"
)

// MemoryStore serves a fixed set of topics from memory. It is never written
// after construction, so concurrent reads need no locking.
type MemoryStore struct {
	topics []models.Topic
}

func NewMemoryStore(topics []models.Topic) *MemoryStore {
	return &MemoryStore{topics: append([]models.Topic(nil), topics...)}
}

// LoadMemoryStore reads a JSON array of topic documents, the shape produced by
// `mongoexport --jsonArray`.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[MemoryStore] Failed to read dump %s: %w", path, err)
	}

	var topics []models.Topic
	if err := json.Unmarshal(raw, &topics); err != nil {
		return nil, fmt.Errorf("[MemoryStore] Failed to decode dump %s: %w", path, err)
	}

	slog.Info("[MemoryStore] Loaded topic dump",
		slog.String("path", path),
		slog.Int("count", len(topics)))
	return NewMemoryStore(topics), nil
}

func (m *MemoryStore) FindTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, t := range m.topics {
		if t.TopicID == topicID {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) FindTopics(ctx context.Context, filter TopicFilter, limit int) ([]models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filterTopics(m.topics, filter, limit), nil
}

func (m *MemoryStore) SampleTopics(ctx context.Context, size int) ([]models.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sampleTopics(m.topics, size), nil
}

func (m *MemoryStore) MatchComments(ctx context.Context, filter CommentFilter, limit int) ([]models.CommentMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matchComments(m.topics, filter, limit), nil
}

func (m *MemoryStore) Counts(ctx context.Context) (models.Counts, error) {
	if err := ctx.Err(); err != nil {
		return models.Counts{}, err
	}
	return countTopics(m.topics), nil
}

func (m *MemoryStore) UserCounts(ctx context.Context) ([]models.UserCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return countUsers(m.topics), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}
