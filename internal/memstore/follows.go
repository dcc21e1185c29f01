package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type followStore struct {
	s *Store
	j *journal
}

// Follows returns the follow ledger view of the store.
func (s *Store) Follows() follows.Store {
	return followStore{s: s}
}

func (f followStore) Transaction(_ context.Context, fn func(tx follows.Store) error) error {
	return f.s.transaction(f.j, func(j *journal) error {
		return fn(followStore{s: f.s, j: j})
	})
}

func (f followStore) FollowTarget(t models.TargetType) follows.TargetAdapter {
	return followTarget{followStore: f, t: t}
}

func (f followStore) FindFollow(_ context.Context, k follows.Key) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.follows[k]
	return ok, nil
}

func (f followStore) CreateFollow(_ context.Context, k follows.Key, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, exists := f.s.follows[k]; exists {
		return apperr.Conflict("Already following")
	}
	f.s.follows[k] = &models.Follow{
		ID:         f.s.id(),
		TargetType: k.TargetType,
		TargetID:   k.TargetID,
		UserID:     k.UserID,
		CreatedAt:  at,
	}
	f.j.record(func() { delete(f.s.follows, k) })
	return nil
}

func (f followStore) DeleteFollow(_ context.Context, k follows.Key) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	row, ok := f.s.follows[k]
	if !ok {
		return nil
	}
	delete(f.s.follows, k)
	f.j.record(func() { f.s.follows[k] = row })
	return nil
}

func (f followStore) ListFollowerIDs(_ context.Context, t models.TargetType, id uint) ([]uint, error) {
	return f.s.listFollows(func(row *models.Follow) bool {
		return row.TargetType == t && row.TargetID == id
	}, func(row *models.Follow) uint { return row.UserID }), nil
}

func (f followStore) ListFollowedIDs(_ context.Context, userID uint, t models.TargetType) ([]uint, error) {
	return f.s.listFollows(func(row *models.Follow) bool {
		return row.UserID == userID && row.TargetType == t
	}, func(row *models.Follow) uint { return row.TargetID }), nil
}

func (s *Store) listFollows(match func(*models.Follow) bool, pick func(*models.Follow) uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []*models.Follow
	for _, row := range s.follows {
		if match(row) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	out := make([]uint, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick(row))
	}
	return out
}

type followTarget struct {
	followStore
	t models.TargetType
}

func (a followTarget) Load(_ context.Context, id uint) (follows.Target, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	row, ok := a.s.row(a.t, id)
	if !ok || row.follow == nil {
		return follows.Target{}, notFound(a.t)
	}
	return follows.Target{Type: a.t, ID: id, OwnerID: row.authorID, FollowCount: *row.follow}, nil
}

func (a followTarget) AdjustFollowCount(_ context.Context, id uint, delta int) (int, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	row, ok := a.s.row(a.t, id)
	if !ok || row.follow == nil {
		return 0, notFound(a.t)
	}
	old := *row.follow
	*row.follow = max(old+delta, 0)
	a.j.record(func() { *row.follow = old })
	return *row.follow, nil
}
