// Package votes applies votes to claims, evidence, perspectives and replies.
// One service handles every target type; the per-type storage differences
// live behind TargetAdapter.
package votes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/metrics"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/users"
)

// ScoreCascade recomputes a claim's total score after one of its children changed.
type ScoreCascade interface {
	Recompute(ctx context.Context, claimID uint) (int, error)
}

// UserDirectory resolves voter ids into public summaries.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []uint) (map[uint]users.Summary, error)
}

const conflictAttempts = 3

type Deps struct {
	Store    Store
	Cascade  ScoreCascade
	Notifier notify.Enqueuer
	Users    UserDirectory
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

type Service struct {
	store    Store
	cascade  ScoreCascade
	notifier notify.Enqueuer
	users    UserDirectory
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		cascade:  d.Cascade,
		notifier: d.Notifier,
		users:    d.Users,
		clock:    d.Clock,
		logger:   d.Logger,
		metrics:  d.Metrics,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard{}
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type CastInput struct {
	TargetType models.TargetType
	TargetID   uint
	UserID     uint
	// VoterName is only used to word notifications.
	VoterName  string
	Direction  models.VoteDirection
}

// ClaimScore is the owning claim's aggregate after a cascade.
type ClaimScore struct {
	ID         uint `json:"id"`
	TotalScore int  `json:"totalScore"`
}

type Result struct {
	TargetType models.TargetType
	TargetID   uint
	Counters   Counters
	Transition Transition
	// Claim is nil when the target does not cascade or the recompute failed.
	Claim *ClaimScore
}

// UserVote is the caller's resulting direction, empty when withdrawn.
func (r Result) UserVote() models.VoteDirection {
	return r.Transition.Result
}

// CastVote applies one vote request. The ledger entry and the counters are
// written in a single transaction; the claim cascade and notifications run
// after commit and never fail the vote.
func (s *Service) CastVote(ctx context.Context, in CastInput) (Result, error) {
	start := s.clock.Now()

	if !in.TargetType.Votable() {
		return Result{}, apperr.Validation("Invalid target type")
	}
	if in.TargetID == 0 {
		return Result{}, apperr.Validation("Invalid " + string(in.TargetType) + " ID")
	}
	if !in.Direction.Valid() {
		return Result{}, apperr.Validation(`voteType must be "upvote" or "downvote"`)
	}
	if in.UserID == 0 {
		return Result{}, apperr.Auth("User not authenticated")
	}

	target, err := s.store.Target(in.TargetType).Load(ctx, in.TargetID)
	if err != nil {
		return Result{}, err
	}

	var (
		tr       Transition
		counters Counters
	)
	op := func() error {
		err := s.store.Transaction(ctx, func(tx Store) error {
			var err error
			tr, counters, err = s.apply(ctx, tx, in)
			return err
		})
		if err != nil && !apperr.IsKind(err, apperr.KindConflict) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, conflictAttempts-1), ctx)); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return Result{}, apperr.Internal("Failed to record vote", err)
		}
		return Result{}, err
	}

	res := Result{
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Counters:   counters,
		Transition: tr,
	}

	if in.TargetType.CascadesToClaim() && target.ClaimID != 0 && s.cascade != nil {
		total, err := s.cascade.Recompute(ctx, target.ClaimID)
		if err != nil {
			s.logger.WarnContext(ctx, "claim score recompute failed",
				"claim_id", target.ClaimID, "target", in.TargetType, "target_id", in.TargetID, "error", err)
		} else {
			res.Claim = &ClaimScore{ID: target.ClaimID, TotalScore: total}
		}
	}

	if in.TargetType == models.TargetReply && tr.Mutation == MutationCreate && target.AuthorID != in.UserID {
		s.notifier.Enqueue(replyVoteNotification(target, in))
	}

	s.metrics.ObserveVote(string(in.TargetType), string(tr.Mutation), s.clock.Since(start))
	return res, nil
}

func (s *Service) apply(ctx context.Context, tx Store, in CastInput) (Transition, Counters, error) {
	key := Key{TargetType: in.TargetType, TargetID: in.TargetID, UserID: in.UserID}

	existing, found, err := tx.FindVote(ctx, key)
	if err != nil {
		return Transition{}, Counters{}, err
	}
	var current models.VoteDirection
	if found {
		current = existing.Direction
	}

	tr := Decide(current, in.Direction)
	switch tr.Mutation {
	case MutationCreate:
		err = tx.CreateVote(ctx, Record{Key: key, Direction: in.Direction, CreatedAt: s.clock.Now().UTC()})
	case MutationDelete:
		err = tx.DeleteVote(ctx, key)
	case MutationSwitch:
		err = tx.UpdateVoteDirection(ctx, key, in.Direction)
	}
	if err != nil {
		return Transition{}, Counters{}, err
	}

	counters, err := tx.Target(in.TargetType).AdjustCounters(ctx, in.TargetID, tr.Delta)
	if err != nil {
		return Transition{}, Counters{}, err
	}
	return tr, counters, nil
}

func replyVoteNotification(target Target, in CastInput) notify.Notification {
	who := in.VoterName
	if who == "" {
		who = "Someone"
	}
	verb := "upvoted"
	if in.Direction == models.VoteDown {
		verb = "downvoted"
	}
	return notify.Notification{
		UserID:  target.AuthorID,
		Type:    models.NotificationReplyVote,
		Title:   "New vote on your reply",
		Message: fmt.Sprintf("%s %s your reply", who, verb),
		Link:    fmt.Sprintf("/replies/%d", target.ID),
	}
}

// UserVote returns the user's current direction on a target, or "".
func (s *Service) UserVote(ctx context.Context, t models.TargetType, id, userID uint) (models.VoteDirection, error) {
	if userID == 0 {
		return "", nil
	}
	rec, found, err := s.store.FindVote(ctx, Key{TargetType: t, TargetID: id, UserID: userID})
	if err != nil || !found {
		return "", err
	}
	return rec.Direction, nil
}
