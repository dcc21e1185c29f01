package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/emilythestrangee/debate-platform/backend/internal/metrics"
)

// ErrQueueClosed is returned by Close when called twice.
var ErrQueueClosed = errors.New("notification queue closed")

type Options struct {
	QueueSize       int
	Workers         int
	MaxRetries      uint64
	InitialBackoff  time.Duration
	DeliveryTimeout time.Duration
	// BreakerFailures consecutive failures open a sink's breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func DefaultOptions() Options {
	return Options{
		QueueSize:       1000,
		Workers:         2,
		MaxRetries:      3,
		InitialBackoff:  200 * time.Millisecond,
		DeliveryTimeout: 2 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

type guardedSink struct {
	sink    Sink
	breaker *gobreaker.CircuitBreaker
}

// Queue is a bounded in-process dispatch queue. Enqueue never blocks: when
// the buffer is full the notification is dropped and logged.
type Queue struct {
	opts    Options
	sinks   []guardedSink
	jobs    chan Notification
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue starts opts.Workers delivery goroutines fanning out to sinks.
func NewQueue(opts Options, logger *slog.Logger, m *metrics.Metrics, sinks ...Sink) *Queue {
	def := DefaultOptions()
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = def.InitialBackoff
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = def.DeliveryTimeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = def.BreakerFailures
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = def.BreakerCooldown
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		opts:    opts,
		jobs:    make(chan Notification, opts.QueueSize),
		logger:  logger.With("component", "notify"),
		metrics: m,
	}
	for _, s := range sinks {
		q.sinks = append(q.sinks, guardedSink{sink: s, breaker: q.newBreaker(s.Name())})
	}

	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) newBreaker(name string) *gobreaker.CircuitBreaker {
	failures := q.opts.BreakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: q.opts.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			q.logger.Warn("notification sink breaker state changed", "sink", name, "from", from.String(), "to", to.String())
		},
	})
}

// Enqueue schedules n for delivery. It never blocks and never fails the caller.
func (q *Queue) Enqueue(n Notification) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.logger.Warn("notification dropped, queue closed", "user_id", n.UserID, "type", n.Type)
		q.metrics.ObserveNotification("dropped")
		return
	}

	select {
	case q.jobs <- n:
		q.metrics.ObserveNotification("enqueued")
		q.metrics.SetQueueDepth(len(q.jobs))
	default:
		q.logger.Warn("notification queue full, dropping", "user_id", n.UserID, "type", n.Type)
		q.metrics.ObserveNotification("dropped")
	}
}

// Close stops accepting notifications and waits for queued ones to drain or
// for ctx to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for n := range q.jobs {
		q.metrics.SetQueueDepth(len(q.jobs))
		q.dispatch(n)
	}
}

func (q *Queue) dispatch(n Notification) {
	for _, gs := range q.sinks {
		if err := q.deliver(gs, n); err != nil {
			q.logger.Error("notification delivery failed",
				"sink", gs.sink.Name(), "user_id", n.UserID, "type", n.Type, "error", err)
			q.metrics.ObserveNotification("failed")
			continue
		}
		q.metrics.ObserveNotification("delivered")
	}
}

func (q *Queue) deliver(gs guardedSink, n Notification) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = q.opts.InitialBackoff
	policy.MaxElapsedTime = 0

	op := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), q.opts.DeliveryTimeout)
		defer cancel()

		_, err := gs.breaker.Execute(func() (interface{}, error) {
			return nil, gs.sink.Deliver(ctx, n)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(op, backoff.WithMaxRetries(policy, q.opts.MaxRetries))
}
