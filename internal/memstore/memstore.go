// Package memstore is an in-process implementation of every store port.
// It backs STORE_DRIVER=memory and the service and handler tests.
// Transactions are serialized and undone on error through a journal.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	clock  clockwork.Clock
	nextID uint

	users         map[uint]*models.User
	claims        map[uint]*models.Claim
	evidence      map[uint]*models.Evidence
	perspectives  map[uint]*models.Perspective
	replies       map[uint]*models.Reply
	votes         map[votes.Key]*models.Vote
	follows       map[follows.Key]*models.Follow
	notifications []models.Notification
}

func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:        clock,
		users:        map[uint]*models.User{},
		claims:       map[uint]*models.Claim{},
		evidence:     map[uint]*models.Evidence{},
		perspectives: map[uint]*models.Perspective{},
		replies:      map[uint]*models.Reply{},
		votes:        map[votes.Key]*models.Vote{},
		follows:      map[follows.Key]*models.Follow{},
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// journal collects undo steps for the running transaction.
type journal struct {
	undo []func()
}

func (j *journal) record(f func()) {
	if j != nil {
		j.undo = append(j.undo, f)
	}
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

func (s *Store) transaction(j *journal, fn func(j *journal) error) error {
	if j != nil {
		return fn(j)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j = &journal{}
	if err := fn(j); err != nil {
		s.mu.Lock()
		j.rollback()
		s.mu.Unlock()
		return err
	}
	return nil
}

// counterRow points into the counter fields of a stored target. Pointers
// are nil where the target type has no such field.
type counterRow struct {
	up, down, score, follow *int
	authorID, claimID       uint
}

func (s *Store) row(t models.TargetType, id uint) (counterRow, bool) {
	switch t {
	case models.TargetClaim:
		if c, ok := s.claims[id]; ok {
			return counterRow{up: &c.Upvotes, down: &c.Downvotes, follow: &c.FollowCount, authorID: c.AuthorID}, true
		}
	case models.TargetEvidence:
		if e, ok := s.evidence[id]; ok {
			return counterRow{up: &e.Upvotes, down: &e.Downvotes, score: &e.Score, follow: &e.FollowCount, authorID: e.AuthorID, claimID: e.ClaimID}, true
		}
	case models.TargetPerspective:
		if p, ok := s.perspectives[id]; ok {
			return counterRow{up: &p.Upvotes, down: &p.Downvotes, score: &p.Score, follow: &p.FollowCount, authorID: p.AuthorID, claimID: p.ClaimID}, true
		}
	case models.TargetReply:
		if r, ok := s.replies[id]; ok {
			return counterRow{up: &r.Upvotes, down: &r.Downvotes, score: &r.Score, authorID: r.AuthorID}, true
		}
	case models.TargetUser:
		if u, ok := s.users[id]; ok {
			return counterRow{follow: &u.FollowCount, authorID: u.ID}, true
		}
	}
	return counterRow{}, false
}

func notFound(t models.TargetType) error {
	name := string(t)
	return apperr.NotFound(strings.ToUpper(name[:1]) + name[1:] + " not found")
}

// CreateUser stores a user. Identity is managed elsewhere; this exists for
// seeding and tests.
func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return apperr.Conflict("Username already taken")
		}
	}
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	now := s.clock.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) FindUsers(_ context.Context, ids []uint) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, id uint) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, notFound(models.TargetUser)
	}
	return *u, nil
}

func (s *Store) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id()
	n.CreatedAt = s.clock.Now().UTC()
	s.notifications = append(s.notifications, *n)
	return nil
}

// ListNotifications returns the user's inbox, newest first.
func (s *Store) ListNotifications(_ context.Context, userID uint, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SumNetVotes implements the scoring store.
func (s *Store) SumNetVotes(_ context.Context, kind models.TargetType, claimID uint, statuses []models.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := 0
	switch kind {
	case models.TargetEvidence:
		for _, e := range s.evidence {
			if e.ClaimID == claimID && slices.Contains(statuses, e.Status) {
				sum += e.Upvotes - e.Downvotes
			}
		}
	case models.TargetPerspective:
		for _, p := range s.perspectives {
			if p.ClaimID == claimID && slices.Contains(statuses, p.Status) {
				sum += p.Upvotes - p.Downvotes
			}
		}
	}
	return sum, nil
}

func (s *Store) SetTotalScore(_ context.Context, claimID uint, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[claimID]
	if !ok {
		return notFound(models.TargetClaim)
	}
	c.TotalScore = total
	return nil
}

// CountVotes counts ledger entries for a target in one direction.
func (s *Store) CountVotes(t models.TargetType, id uint, dir models.VoteDirection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.votes {
		if k.TargetType == t && k.TargetID == id && v.Direction == dir {
			n++
		}
	}
	return n
}

func sortVotes(records []votes.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
