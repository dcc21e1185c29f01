package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/emilythestrangee/debate-platform/backend/internal/content"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/handlers"
	"github.com/emilythestrangee/debate-platform/backend/internal/metrics"
	"github.com/emilythestrangee/debate-platform/backend/internal/middleware"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
	"github.com/emilythestrangee/debate-platform/backend/internal/users"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

// Store is everything the service needs from persistence. Both the gorm
// store and the in-memory store satisfy it.
type Store interface {
	content.Store
	scoring.Store
	users.Source
	notify.InboxStore
	handlers.UserStore
	handlers.Inbox
	Votes() votes.Store
	Follows() follows.Store
}

type Config struct {
	JWTSecret         string
	CORSOrigins       []string
	VoteRatePerMinute int
	ScorePolicy       scoring.Policy
	Notify            notify.Options

	// Redis enables the recent-notification feed when set.
	Redis     *redis.Client
	FeedLimit int64

	// Health reports database status; nil means no database to check.
	Health func() map[string]string
	Clock  clockwork.Clock
}

type Server struct {
	handler  *handlers.Handler
	auth     *middleware.Authenticator
	limiter  *middleware.UserRateLimiter
	queue    *notify.Queue
	health   func() map[string]string
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	origins  []string
}

// New wires the services on top of store and starts the notification
// workers. Call Close to drain them.
func New(store Store, cfg Config, logger *slog.Logger, reg *prometheus.Registry) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	m := metrics.New(reg)

	sinks := []notify.Sink{notify.NewInboxSink(store)}
	var feed handlers.Feed
	if cfg.Redis != nil {
		redisSink := notify.NewRedisSink(cfg.Redis, cfg.FeedLimit, cfg.Clock)
		sinks = append(sinks, redisSink)
		feed = redisSink
	}
	queue := notify.NewQueue(cfg.Notify, logger, m, sinks...)

	directory, err := users.NewDirectory(store, 4096, 5*time.Minute, cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("create user directory: %w", err)
	}
	aggregator := scoring.NewAggregator(store, cfg.ScorePolicy, logger, m)

	voteService := votes.NewService(votes.Deps{
		Store:    store.Votes(),
		Cascade:  aggregator,
		Notifier: queue,
		Users:    directory,
		Clock:    cfg.Clock,
		Logger:   logger,
		Metrics:  m,
	})
	followService := follows.NewService(follows.Deps{
		Store:    store.Follows(),
		Notifier: queue,
		Users:    directory,
		Clock:    cfg.Clock,
		Logger:   logger,
		Metrics:  m,
	})

	h := handlers.NewHandler(handlers.Deps{
		Votes:   voteService,
		Follows: followService,
		Content: content.NewService(store, aggregator, logger),
		Users:   store,
		Inbox:   store,
		Feed:    feed,
		Logger:  logger,
	})

	return &Server{
		handler:  h,
		auth:     middleware.NewAuthenticator(cfg.JWTSecret),
		limiter:  middleware.NewUserRateLimiter(cfg.VoteRatePerMinute, cfg.Clock),
		queue:    queue,
		health:   cfg.Health,
		gatherer: reg,
		logger:   logger,
		origins:  cfg.CORSOrigins,
	}, nil
}

// NewHTTPServer wraps the routes in an http.Server listening on port.
func (s *Server) NewHTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Close stops accepting notifications and waits for queued ones.
func (s *Server) Close(ctx context.Context) error {
	return s.queue.Close(ctx)
}
