package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type countingSource struct {
	mu    sync.Mutex
	users map[uint]models.User
	calls int
	err   error
}

func (s *countingSource) FindUsers(_ context.Context, ids []uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newSource() *countingSource {
	return &countingSource{users: map[uint]models.User{
		1: {ID: 1, Username: "ada", Avatar: "1"},
		2: {ID: 2, Username: "grace", Avatar: "2"},
	}}
}

func TestSummaries_CachesWithinTTL(t *testing.T) {
	src := newSource()
	clock := clockwork.NewFakeClock()
	dir, err := NewDirectory(src, 16, time.Minute, clock)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := dir.Summaries(ctx, []uint{1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, "ada", got[1].Username)
	assert.Equal(t, "grace", got[2].Username)

	_, err = dir.Summaries(ctx, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	clock.Advance(2 * time.Minute)
	_, err = dir.Summaries(ctx, []uint{1})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestSummaries_UnknownIDsAreAbsent(t *testing.T) {
	dir, err := NewDirectory(newSource(), 16, time.Minute, nil)
	require.NoError(t, err)

	got, err := dir.Summaries(context.Background(), []uint{1, 99})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	_, ok := got[99]
	assert.False(t, ok)
}

func TestSummaries_SourceErrorKeepsCachedHits(t *testing.T) {
	src := newSource()
	dir, err := NewDirectory(src, 16, time.Minute, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = dir.Summaries(ctx, []uint{1})
	require.NoError(t, err)

	src.err = errors.New("db down")
	got, err := dir.Summaries(ctx, []uint{1, 2})
	assert.Error(t, err)
	assert.Equal(t, "ada", got[1].Username)
}

func TestInvalidate(t *testing.T) {
	src := newSource()
	dir, err := NewDirectory(src, 16, time.Hour, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = dir.Summaries(ctx, []uint{1})
	dir.Invalidate(1)
	_, _ = dir.Summaries(ctx, []uint{1})
	assert.Equal(t, 2, src.calls)
}
