package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacesedan/nairaland/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// commentsExpr expands a topic's comment array, treating a missing array as
// empty.
const commentsExpr = `jsonb_array_elements(COALESCE(t.doc->'comments', '[]'::jsonb))`

// PostgresStore reads a table of (topic_id text PRIMARY KEY, doc jsonb), one
// row per topic document.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresStore(pool *pgxpool.Pool, table string) (*PostgresStore, error) {
	if table == "" {
		table = "topics"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("[Postgres] invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: pgx.Identifier{table}.Sanitize()}, nil
}

func (s *PostgresStore) FindTopic(ctx context.Context, topicID string) (*models.Topic, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM `+s.table+` WHERE topic_id = $1`, topicID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[Postgres] Failed to find topic %s: %w", topicID, err)
	}

	var topic models.Topic
	if err := json.Unmarshal(raw, &topic); err != nil {
		return nil, fmt.Errorf("[Postgres] Unable to decode topic %s: %w", topicID, err)
	}
	return &topic, nil
}

func (s *PostgresStore) FindTopics(ctx context.Context, filter TopicFilter, limit int) ([]models.Topic, error) {
	query, args := buildTopicsQuery(s.table, filter, limit)
	topics, err := s.queryTopics(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] Find topics failed: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) SampleTopics(ctx context.Context, size int) ([]models.Topic, error) {
	topics, err := s.queryTopics(ctx, `SELECT doc FROM `+s.table+` ORDER BY random() LIMIT $1`, size)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] Sample topics failed: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) MatchComments(ctx context.Context, filter CommentFilter, limit int) ([]models.CommentMatch, error) {
	query, args := buildCommentMatchQuery(s.table, filter, limit)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] Comment search failed: %w", err)
	}
	defer rows.Close()

	var matches []models.CommentMatch
	for rows.Next() {
		var topicRaw, commentRaw []byte
		if err := rows.Scan(&topicRaw, &commentRaw); err != nil {
			return nil, fmt.Errorf("[Postgres] Unable to scan comment match: %w", err)
		}
		var match models.CommentMatch
		if err := json.Unmarshal(topicRaw, &match.Topic); err != nil {
			return nil, fmt.Errorf("[Postgres] Unable to decode topic context: %w", err)
		}
		if err := json.Unmarshal(commentRaw, &match.Comment); err != nil {
			return nil, fmt.Errorf("[Postgres] Unable to decode comment: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Postgres] Comment search failed: %w", err)
	}
	return matches, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (models.Counts, error) {
	var topics, comments, users int64
	err := s.pool.QueryRow(ctx, `
        SELECT count(*), COALESCE(sum(jsonb_array_length(COALESCE(t.doc->'comments', '[]'::jsonb))), 0)
        FROM `+s.table+` AS t
    `).Scan(&topics, &comments)
	if err != nil {
		return models.Counts{}, fmt.Errorf("[Postgres] Counting topics failed: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
        SELECT count(DISTINCT c.value->>'user')
        FROM `+s.table+` AS t CROSS JOIN LATERAL `+commentsExpr+` AS c(value)
        WHERE COALESCE(c.value->>'user', '') <> ''
    `).Scan(&users)
	if err != nil {
		return models.Counts{}, fmt.Errorf("[Postgres] Counting users failed: %w", err)
	}

	return models.Counts{Topics: int(topics), Comments: int(comments), Users: int(users)}, nil
}

func (s *PostgresStore) UserCounts(ctx context.Context) ([]models.UserCount, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT c.value->>'user', count(*)
        FROM `+s.table+` AS t CROSS JOIN LATERAL `+commentsExpr+` AS c(value)
        WHERE COALESCE(c.value->>'user', '') <> ''
        GROUP BY 1
    `)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] User breakdown failed: %w", err)
	}
	defer rows.Close()

	var counts []models.UserCount
	for rows.Next() {
		var user string
		var n int64
		if err := rows.Scan(&user, &n); err != nil {
			slog.Warn("[Postgres] Failed to scan user count row", slog.String("error", err.Error()))
			continue
		}
		counts = append(counts, models.UserCount{User: user, Count: int(n)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Postgres] User breakdown failed: %w", err)
	}
	SortUserCounts(counts)
	return counts, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) queryTopics(ctx context.Context, query string, args ...any) ([]models.Topic, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var topic models.Topic
		if err := json.Unmarshal(raw, &topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// placeholders hands out $1, $2, ... in the order arguments are added.
type placeholders struct {
	args []any
}

func (p *placeholders) add(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// buildTopicsQuery mirrors topicFilterDocument: each comment-level predicate
// is its own EXISTS, so different comments may satisfy them.
func buildTopicsQuery(table string, f TopicFilter, limit int) (string, []any) {
	var p placeholders
	conditions := []string{"TRUE"}

	if f.TopicID != "" {
		conditions = append(conditions, "t.topic_id = "+p.add(f.TopicID))
	}
	if f.TitleContains != "" {
		conditions = append(conditions, "strpos(t.doc->>'topic', "+p.add(f.TitleContains)+") > 0")
	}
	if f.PageID != nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM "+commentsExpr+" AS c(value) WHERE c.value->'pageId' = to_jsonb("+p.add(*f.PageID)+"::int))")
	}
	if f.User != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM "+commentsExpr+" AS c(value) WHERE c.value->>'user' = "+p.add(f.User)+")")
	}

	query := "SELECT t.doc FROM " + table + " AS t WHERE " + strings.Join(conditions, " AND ") + " ORDER BY t.topic_id"
	if limit > 0 {
		query += " LIMIT " + p.add(limit)
	}
	return query, p.args
}

func buildCommentMatchQuery(table string, f CommentFilter, limit int) (string, []any) {
	var p placeholders
	conditions := []string{"TRUE"}

	if f.TextContains != "" {
		conditions = append(conditions, "strpos(c.value->>'text', "+p.add(f.TextContains)+") > 0")
	}
	if f.User != "" {
		conditions = append(conditions, "c.value->>'user' = "+p.add(f.User))
	}
	if f.PageID != nil {
		conditions = append(conditions, "c.value->'pageId' = to_jsonb("+p.add(*f.PageID)+"::int)")
	}

	query := "SELECT t.doc - 'comments', c.value FROM " + table + " AS t CROSS JOIN LATERAL " +
		commentsExpr + " WITH ORDINALITY AS c(value, idx) WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY t.topic_id, c.idx"
	if limit > 0 {
		query += " LIMIT " + p.add(limit)
	}
	return query, p.args
}
