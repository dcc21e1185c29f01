package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []Notification
	failFirst int
	calls     int
	block     chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failFirst {
		return errors.New("transient")
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func (s *recordingSink) snapshot() ([]Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.delivered...), s.calls
}

func fastOptions() Options {
	return Options{
		QueueSize:       4,
		Workers:         1,
		MaxRetries:      3,
		InitialBackoff:  time.Millisecond,
		DeliveryTimeout: time.Second,
		BreakerFailures: 10,
		BreakerCooldown: time.Second,
	}
}

func TestQueue_DeliversToAllSinks(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	q := NewQueue(fastOptions(), nil, nil, a, b)

	q.Enqueue(Notification{UserID: 7, Type: "reply_vote", Title: "New vote"})
	require.NoError(t, q.Close(context.Background()))

	gotA, _ := a.snapshot()
	gotB, _ := b.snapshot()
	require.Len(t, gotA, 1)
	require.Len(t, gotB, 1)
	assert.Equal(t, uint(7), gotA[0].UserID)
}

func TestQueue_RetriesTransientFailures(t *testing.T) {
	sink := &recordingSink{failFirst: 2}
	q := NewQueue(fastOptions(), nil, nil, sink)

	q.Enqueue(Notification{UserID: 1})
	require.NoError(t, q.Close(context.Background()))

	got, calls := sink.snapshot()
	assert.Len(t, got, 1)
	assert.Equal(t, 3, calls)
}

func TestQueue_GivesUpAfterMaxRetries(t *testing.T) {
	sink := &recordingSink{failFirst: 100}
	opts := fastOptions()
	opts.MaxRetries = 2
	q := NewQueue(opts, nil, nil, sink)

	q.Enqueue(Notification{UserID: 1})
	require.NoError(t, q.Close(context.Background()))

	got, calls := sink.snapshot()
	assert.Empty(t, got)
	assert.Equal(t, 3, calls)
}

func TestQueue_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	opts := fastOptions()
	opts.QueueSize = 1
	q := NewQueue(opts, nil, nil, sink)

	done := make(chan struct{})
	go func() {
		// one in flight, one buffered, the rest dropped; none may block
		for i := 0; i < 10; i++ {
			q.Enqueue(Notification{UserID: uint(i + 1)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(sink.block)
	require.NoError(t, q.Close(context.Background()))

	got, _ := sink.snapshot()
	assert.LessOrEqual(t, len(got), 2)
	assert.NotEmpty(t, got)
}

func TestQueue_EnqueueAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(fastOptions(), nil, nil, sink)
	require.NoError(t, q.Close(context.Background()))

	assert.NotPanics(t, func() { q.Enqueue(Notification{UserID: 1}) })
	assert.ErrorIs(t, q.Close(context.Background()), ErrQueueClosed)

	got, _ := sink.snapshot()
	assert.Empty(t, got)
}

func TestQueue_OpenBreakerStopsRetrying(t *testing.T) {
	sink := &recordingSink{failFirst: 100}
	opts := fastOptions()
	opts.BreakerFailures = 1
	opts.MaxRetries = 5
	q := NewQueue(opts, nil, nil, sink)

	q.Enqueue(Notification{UserID: 1})
	require.NoError(t, q.Close(context.Background()))

	// the first failure trips the breaker; the retry sees ErrOpenState and stops
	_, calls := sink.snapshot()
	assert.Equal(t, 1, calls)
}
