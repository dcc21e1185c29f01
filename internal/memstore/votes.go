package memstore

import (
	"context"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

type voteStore struct {
	s *Store
	j *journal
}

// Votes returns the vote ledger view of the store.
func (s *Store) Votes() votes.Store {
	return voteStore{s: s}
}

func (v voteStore) Transaction(_ context.Context, fn func(tx votes.Store) error) error {
	return v.s.transaction(v.j, func(j *journal) error {
		return fn(voteStore{s: v.s, j: j})
	})
}

func (v voteStore) Target(t models.TargetType) votes.TargetAdapter {
	return voteTarget{voteStore: v, t: t}
}

func (v voteStore) FindVote(_ context.Context, k votes.Key) (votes.Record, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	row, ok := v.s.votes[k]
	if !ok {
		return votes.Record{}, false, nil
	}
	return toRecord(row), true, nil
}

func (v voteStore) CreateVote(_ context.Context, r votes.Record) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.votes[r.Key]; exists {
		return apperr.Conflict("Vote already exists")
	}
	v.s.votes[r.Key] = &models.Vote{
		ID:         v.s.id(),
		TargetType: r.Key.TargetType,
		TargetID:   r.Key.TargetID,
		UserID:     r.Key.UserID,
		Direction:  r.Direction,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.CreatedAt,
	}
	v.j.record(func() { delete(v.s.votes, r.Key) })
	return nil
}

func (v voteStore) UpdateVoteDirection(_ context.Context, k votes.Key, dir models.VoteDirection) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	row, ok := v.s.votes[k]
	if !ok {
		return apperr.NotFound("Vote not found")
	}
	old := row.Direction
	row.Direction = dir
	row.UpdatedAt = v.s.clock.Now().UTC()
	v.j.record(func() { row.Direction = old })
	return nil
}

func (v voteStore) DeleteVote(_ context.Context, k votes.Key) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	row, ok := v.s.votes[k]
	if !ok {
		return nil
	}
	delete(v.s.votes, k)
	v.j.record(func() { v.s.votes[k] = row })
	return nil
}

func (v voteStore) ListVotes(_ context.Context, t models.TargetType, id uint, filter models.VoteDirection) ([]votes.Record, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var out []votes.Record
	for k, row := range v.s.votes {
		if k.TargetType != t || k.TargetID != id {
			continue
		}
		if filter != "" && row.Direction != filter {
			continue
		}
		out = append(out, toRecord(row))
	}
	sortVotes(out)
	return out, nil
}

func toRecord(v *models.Vote) votes.Record {
	return votes.Record{
		ID:        v.ID,
		Key:       votes.Key{TargetType: v.TargetType, TargetID: v.TargetID, UserID: v.UserID},
		Direction: v.Direction,
		CreatedAt: v.CreatedAt,
	}
}

type voteTarget struct {
	voteStore
	t models.TargetType
}

func (a voteTarget) Load(_ context.Context, id uint) (votes.Target, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	row, ok := a.s.row(a.t, id)
	if !ok || row.up == nil {
		return votes.Target{}, notFound(a.t)
	}
	return votes.Target{
		Type:     a.t,
		ID:       id,
		AuthorID: row.authorID,
		ClaimID:  row.claimID,
		Counters: votes.Counters{Upvotes: *row.up, Downvotes: *row.down},
	}, nil
}

func (a voteTarget) AdjustCounters(_ context.Context, id uint, d votes.Delta) (votes.Counters, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	row, ok := a.s.row(a.t, id)
	if !ok || row.up == nil {
		return votes.Counters{}, notFound(a.t)
	}

	old := votes.Counters{Upvotes: *row.up, Downvotes: *row.down}
	next := old.Apply(d)
	*row.up, *row.down = next.Upvotes, next.Downvotes
	if row.score != nil {
		*row.score = next.Score()
	}
	a.j.record(func() {
		*row.up, *row.down = old.Upvotes, old.Downvotes
		if row.score != nil {
			*row.score = old.Score()
		}
	})
	return next, nil
}
