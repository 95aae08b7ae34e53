package handlers

import (
	"net/url"
	"strconv"

	apierrors "github.com/spacesedan/nairaland/internal/errors"
	"github.com/spacesedan/nairaland/internal/planner"
)

// firstOf returns the value of the first key present in q, accepting both
// the camelCase and snake_case spellings of a parameter.
func firstOf(q url.Values, keys ...string) (string, string, bool) {
	for _, key := range keys {
		if q.Has(key) {
			return key, q.Get(key), true
		}
	}
	return "", "", false
}

// optionalInt parses an integer parameter. An empty value counts as absent.
func optionalInt(op string, q url.Values, keys ...string) (*int, error) {
	key, raw, ok := firstOf(q, keys...)
	if !ok || raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apierrors.NewInvalidFieldError(op, key, err)
	}
	return &n, nil
}

// limitParam returns 0 when limit is absent so the planner applies its
// default. An explicit limit must be a positive integer.
func limitParam(op string, q url.Values) (int, error) {
	n, err := optionalInt(op, q, "limit")
	if err != nil || n == nil {
		return 0, err
	}
	if *n <= 0 {
		return 0, apierrors.NewInvalidFieldError(op, "limit", nil)
	}
	return *n, nil
}

func resultKindParam(op string, q url.Values) (planner.ResultKind, error) {
	kind, err := planner.ParseResultKind(q.Get("r"))
	if err != nil {
		return kind, apierrors.NewInvalidFieldError(op, "r", err)
	}
	return kind, nil
}

func boolParam(op string, q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierrors.NewInvalidFieldError(op, key, err)
	}
	return b, nil
}

func userSearchParams(q url.Values) (planner.UserSearchParams, error) {
	const op = "user_search"

	pageID, err := optionalInt(op, q, "pageId", "page_id")
	if err != nil {
		return planner.UserSearchParams{}, err
	}
	kind, err := resultKindParam(op, q)
	if err != nil {
		return planner.UserSearchParams{}, err
	}
	_, topicID, _ := firstOf(q, "topicId", "topic_id")

	return planner.UserSearchParams{
		TopicID:  topicID,
		PageID:   pageID,
		Username: q.Get("username"),
		Kind:     kind,
	}, nil
}

func textSearchParams(q url.Values) (planner.TextSearchParams, error) {
	const op = "text_search"

	isTopic, err := boolParam(op, q, "topic")
	if err != nil {
		return planner.TextSearchParams{}, err
	}
	pageID, err := optionalInt(op, q, "pageId", "page_id")
	if err != nil {
		return planner.TextSearchParams{}, err
	}
	limit, err := limitParam(op, q)
	if err != nil {
		return planner.TextSearchParams{}, err
	}
	kind, err := resultKindParam(op, q)
	if err != nil {
		return planner.TextSearchParams{}, err
	}

	return planner.TextSearchParams{
		Text:          q.Get("text"),
		IsTopicSearch: isTopic,
		Username:      q.Get("username"),
		PageID:        pageID,
		Limit:         limit,
		Kind:          kind,
	}, nil
}
