// Package config loads service settings from the environment, reading a
// local .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/emilythestrangee/debate-platform/backend/internal/database"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	StoreDriver string   `env:"STORE_DRIVER" envDefault:"postgres"`
	JWTSecret   string   `env:"JWT_SECRET"`
	RedisURL    string   `env:"REDIS_URL"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	Database DatabaseConfig
	Notify   NotifyConfig
	Score    ScoreConfig

	VoteRatePerMinute int `env:"VOTE_RATE_PER_MINUTE" envDefault:"120"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"debate"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	LogLevel string `env:"DB_LOG_LEVEL" envDefault:"warn"`
}

type NotifyConfig struct {
	QueueSize  int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"1000"`
	Workers    int    `env:"NOTIFY_WORKERS" envDefault:"2"`
	MaxRetries uint64 `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	FeedLimit  int64  `env:"NOTIFY_FEED_LIMIT" envDefault:"50"`
}

type ScoreConfig struct {
	EvidenceStatuses    []string `env:"SCORE_EVIDENCE_STATUSES" envSeparator:"," envDefault:"approved"`
	PerspectiveStatuses []string `env:"SCORE_PERSPECTIVE_STATUSES" envSeparator:"," envDefault:"approved"`
	EvidenceWeight      int      `env:"SCORE_EVIDENCE_WEIGHT" envDefault:"1"`
	PerspectiveWeight   int      `env:"SCORE_PERSPECTIVE_WEIGHT" envDefault:"1"`
}

// Load reads .env (if present) and parses the environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := c.Score.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy converts the score settings into an aggregator policy.
func (s ScoreConfig) Policy() (scoring.Policy, error) {
	evidence, err := statuses("SCORE_EVIDENCE_STATUSES", s.EvidenceStatuses)
	if err != nil {
		return scoring.Policy{}, err
	}
	perspectives, err := statuses("SCORE_PERSPECTIVE_STATUSES", s.PerspectiveStatuses)
	if err != nil {
		return scoring.Policy{}, err
	}
	return scoring.Policy{
		EvidenceStatuses:    evidence,
		PerspectiveStatuses: perspectives,
		EvidenceWeight:      s.EvidenceWeight,
		PerspectiveWeight:   s.PerspectiveWeight,
	}, nil
}

func statuses(key string, raw []string) ([]models.Status, error) {
	out := make([]models.Status, 0, len(raw))
	for _, r := range raw {
		st := models.Status(strings.ToLower(strings.TrimSpace(r)))
		if st == "" {
			continue
		}
		if !st.Valid() {
			return nil, fmt.Errorf("%s: unknown status %q", key, r)
		}
		out = append(out, st)
	}
	return out, nil
}

func (d DatabaseConfig) Database() database.Config {
	return database.Config{
		DSN:      d.URL,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Name:     d.Name,
		SSLMode:  d.SSLMode,
		LogLevel: d.LogLevel,
	}
}

func (n NotifyConfig) Options() notify.Options {
	opts := notify.DefaultOptions()
	if n.QueueSize > 0 {
		opts.QueueSize = n.QueueSize
	}
	if n.Workers > 0 {
		opts.Workers = n.Workers
	}
	opts.MaxRetries = n.MaxRetries
	return opts
}
