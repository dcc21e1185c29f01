package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const defaultFeedLength = 50

// FeedEntry is the JSON document kept in a user's recent-notification list.
type FeedEntry struct {
	Notification
	CreatedAt time.Time `json:"createdAt"`
}

// RedisSink keeps a capped list of recent notifications per user, for
// clients that poll a cheap "what's new" feed.
type RedisSink struct {
	client *redis.Client
	prefix string
	limit  int64
	clock  clockwork.Clock
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisSink(client *redis.Client, limit int64, clock clockwork.Clock) *RedisSink {
	if limit <= 0 {
		limit = defaultFeedLength
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisSink{
		client: client,
		prefix: "notifications:",
		limit:  limit,
		clock:  clock,
	}
}

func (s *RedisSink) Name() string { return "redis-feed" }

func (s *RedisSink) key(userID uint) string {
	return s.prefix + strconv.FormatUint(uint64(userID), 10)
}

func (s *RedisSink) Deliver(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(FeedEntry{Notification: n, CreatedAt: s.clock.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal feed entry: %w", err)
	}

	key := s.key(n.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, s.limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push feed entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *RedisSink) Recent(ctx context.Context, userID uint, n int64) ([]FeedEntry, error) {
	if n <= 0 || n > s.limit {
		n = s.limit
	}
	raw, err := s.client.LRange(ctx, s.key(userID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(raw))
	for _, item := range raw {
		var e FeedEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("unmarshal feed entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
