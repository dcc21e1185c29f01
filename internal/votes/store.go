package votes

import (
	"context"
	"time"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

// Key identifies one voter's ledger entry on one target.
type Key struct {
	TargetType models.TargetType
	TargetID   uint
	UserID     uint
}

// Record is a stored vote.
type Record struct {
	ID        uint
	Key       Key
	Direction models.VoteDirection
	CreatedAt time.Time
}

// Target is a votable entity resolved by its adapter. ClaimID is the owning
// claim for evidence and perspectives and zero otherwise.
type Target struct {
	Type     models.TargetType
	ID       uint
	AuthorID uint
	ClaimID  uint
	Counters Counters
}

// TargetAdapter is implemented once per votable target type.
type TargetAdapter interface {
	// Load returns a NotFound error when the target does not exist.
	Load(ctx context.Context, id uint) (Target, error)
	// AdjustCounters applies d atomically, clamped at zero, keeps the
	// target's score in step and returns the stored counters.
	AdjustCounters(ctx context.Context, id uint, d Delta) (Counters, error)
}

// Store is the vote ledger together with access to the target counters.
// Transaction runs fn against a store bound to a single transaction; an
// error from fn rolls everything back.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Target(t models.TargetType) TargetAdapter

	// FindVote locks and returns the entry for k, if any.
	FindVote(ctx context.Context, k Key) (Record, bool, error)
	// CreateVote returns a Conflict error when an entry for the key exists.
	CreateVote(ctx context.Context, r Record) error
	UpdateVoteDirection(ctx context.Context, k Key, dir models.VoteDirection) error
	DeleteVote(ctx context.Context, k Key) error

	// ListVotes returns the target's votes newest first, optionally
	// filtered by direction.
	ListVotes(ctx context.Context, t models.TargetType, id uint, filter models.VoteDirection) ([]Record, error)
}
