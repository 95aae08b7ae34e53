package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	apierrors "github.com/spacesedan/nairaland/internal/errors"
	"github.com/spacesedan/nairaland/internal/models"
	"github.com/spacesedan/nairaland/internal/planner"
)

const API_PREFIX = "/api/v1"

// QueryPlanner is what the HTTP layer needs from *planner.Planner.
type QueryPlanner interface {
	GetTopicByID(ctx context.Context, topicID string) (*models.TopicView, error)
	SampleTopics(ctx context.Context, limit int) ([]models.TopicView, error)
	SearchByUser(ctx context.Context, params planner.UserSearchParams) (planner.Result, error)
	SearchByText(ctx context.Context, params planner.TextSearchParams) (planner.Result, error)
	GetAggregateInfo(ctx context.Context) (models.Info, error)
	GetUserBreakdown(ctx context.Context) (models.UserBreakdown, error)
}

type Options struct {
	// Ready reports store health for /ready. Nil means always ready.
	Ready          *atomic.Bool
	RequestTimeout time.Duration
	// Limiter enables per-client rate limiting when non-nil and
	// RateLimitPerMinute is positive.
	Limiter            Counter
	RateLimitPerMinute int
	Logger             *slog.Logger
}

type Handler struct {
	planner QueryPlanner
	ready   *atomic.Bool
	logger  *slog.Logger
}

func NewHandler(p QueryPlanner, ready *atomic.Bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{planner: p, ready: ready, logger: logger}
}

// RegisterRoutes adds every API route to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/topic/{id:[0-9]+}", h.handleGetTopic).Methods(http.MethodGet)
	r.HandleFunc("/topics", h.handleSampleTopics).Methods(http.MethodGet)
	r.HandleFunc("/info", h.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/info/user", h.handleUserInfo).Methods(http.MethodGet)
	r.HandleFunc("/user/search", h.handleUserSearch).Methods(http.MethodGet)
	r.HandleFunc("/text/search", h.handleTextSearch).Methods(http.MethodGet)
}

// NewRouter serves the API at the root and under API_PREFIX, with the
// health endpoints and the middleware stack.
func NewRouter(p QueryPlanner, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(p, opts.Ready, logger)

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.handleReady).Methods(http.MethodGet)
	h.RegisterRoutes(r.PathPrefix(API_PREFIX).Subrouter())
	h.RegisterRoutes(r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, apierrors.NewNotFoundError("route"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, apierrors.NewMethodNotAllowedError(r.Method+" "+r.URL.Path))
	})

	var handler http.Handler = r
	if opts.Limiter != nil && opts.RateLimitPerMinute > 0 {
		handler = RateLimit(opts.Limiter, opts.RateLimitPerMinute, logger)(handler)
	}
	if opts.RequestTimeout > 0 {
		handler = Timeout(opts.RequestTimeout)(handler)
	}
	return WithMiddlewares(handler, logger)
}
