// Package follows toggles follow relationships on claims, evidence,
// perspectives and users.
package follows

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

type Key struct {
	TargetType models.TargetType
	TargetID   uint
	UserID     uint
}

// Target is a followable entity. OwnerID is the user being followed for
// user targets and the author otherwise.
type Target struct {
	Type        models.TargetType
	ID          uint
	OwnerID     uint
	FollowCount int
}

type TargetAdapter interface {
	Load(ctx context.Context, id uint) (Target, error)
	// AdjustFollowCount adds delta, floored at zero, and returns the new count.
	AdjustFollowCount(ctx context.Context, id uint, delta int) (int, error)
}

type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	FollowTarget(t models.TargetType) TargetAdapter

	FindFollow(ctx context.Context, k Key) (bool, error)
	// CreateFollow returns a Conflict error when the relationship exists.
	CreateFollow(ctx context.Context, k Key, at time.Time) error
	DeleteFollow(ctx context.Context, k Key) error

	// ListFollowerIDs returns who follows a target, newest first.
	ListFollowerIDs(ctx context.Context, t models.TargetType, id uint) ([]uint, error)
	// ListFollowedIDs returns the targets of type t a user follows, newest first.
	ListFollowedIDs(ctx context.Context, userID uint, t models.TargetType) ([]uint, error)
}

// UserDirectory resolves user ids into public summaries.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []uint) (map[uint]users.Summary, error)
}

// Transition is the follow state machine's decision.
type Transition struct {
	Create    bool
	Delta     int
	Following bool
}

// Decide flips the relationship: an existing follow is removed, a missing
// one is created.
func Decide(following bool) Transition {
	if following {
		return Transition{Create: false, Delta: -1, Following: false}
	}
	return Transition{Create: true, Delta: 1, Following: true}
}

type Deps struct {
	Store    Store
	Notifier notify.Enqueuer
	Users    UserDirectory
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

type Service struct {
	store    Store
	notifier notify.Enqueuer
	users    UserDirectory
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(d Deps) *Service {
	s := &Service{store: d.Store, notifier: d.Notifier, users: d.Users, clock: d.Clock, logger: d.Logger, metrics: d.Metrics}
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

type ToggleInput struct {
	TargetType   models.TargetType
	TargetID     uint
	UserID       uint
	FollowerName string
}

type Result struct {
	TargetType  models.TargetType
	TargetID    uint
	IsFollowing bool
	FollowCount int
}

// Toggle follows the target if the user does not follow it yet and
// unfollows it otherwise.
func (s *Service) Toggle(ctx context.Context, in ToggleInput) (Result, error) {
	if !in.TargetType.Followable() {
		return Result{}, apperr.Validation("Invalid target type")
	}
	if in.TargetID == 0 {
		return Result{}, apperr.Validation("Invalid " + string(in.TargetType) + " ID")
	}
	if in.UserID == 0 {
		return Result{}, apperr.Auth("User not authenticated")
	}
	if in.TargetType == models.TargetUser && in.TargetID == in.UserID {
		return Result{}, apperr.Validation("You cannot follow yourself")
	}

	target, err := s.store.FollowTarget(in.TargetType).Load(ctx, in.TargetID)
	if err != nil {
		return Result{}, err
	}

	var (
		tr    Transition
		count int
	)
	op := func() error {
		err := s.store.Transaction(ctx, func(tx Store) error {
			var err error
			tr, count, err = s.apply(ctx, tx, in)
			return err
		})
		if err != nil && !apperr.IsKind(err, apperr.KindConflict) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx)); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return Result{}, apperr.Internal("Failed to update follow", err)
		}
		return Result{}, err
	}

	if in.TargetType == models.TargetUser && tr.Create {
		s.notifier.Enqueue(newFollowerNotification(target, in))
	}
	s.metrics.ObserveFollow(string(in.TargetType), tr.Following)

	return Result{
		TargetType:  in.TargetType,
		TargetID:    in.TargetID,
		IsFollowing: tr.Following,
		FollowCount: count,
	}, nil
}

func (s *Service) apply(ctx context.Context, tx Store, in ToggleInput) (Transition, int, error) {
	key := Key{TargetType: in.TargetType, TargetID: in.TargetID, UserID: in.UserID}

	following, err := tx.FindFollow(ctx, key)
	if err != nil {
		return Transition{}, 0, err
	}
	tr := Decide(following)
	if tr.Create {
		err = tx.CreateFollow(ctx, key, s.clock.Now().UTC())
	} else {
		err = tx.DeleteFollow(ctx, key)
	}
	if err != nil {
		return Transition{}, 0, err
	}

	count, err := tx.FollowTarget(in.TargetType).AdjustFollowCount(ctx, in.TargetID, tr.Delta)
	if err != nil {
		return Transition{}, 0, err
	}
	return tr, count, nil
}

// IsFollowing reports whether the user currently follows the target.
func (s *Service) IsFollowing(ctx context.Context, t models.TargetType, id, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.store.FindFollow(ctx, Key{TargetType: t, TargetID: id, UserID: userID})
}

func newFollowerNotification(target Target, in ToggleInput) notify.Notification {
	who := in.FollowerName
	if who == "" {
		who = "Someone"
	}
	return notify.Notification{
		UserID:  target.ID,
		Type:    models.NotificationNewFollower,
		Title:   "New follower",
		Message: fmt.Sprintf("%s started following you", who),
		Link:    fmt.Sprintf("/users/%d", in.UserID),
	}
}

// Followers lists the users following a target, newest first.
func (s *Service) Followers(ctx context.Context, t models.TargetType, id uint) ([]users.Summary, error) {
	if !t.Followable() {
		return nil, apperr.Validation("Invalid target type")
	}
	if _, err := s.store.FollowTarget(t).Load(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.store.ListFollowerIDs(ctx, t, id)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, ids), nil
}

// Following lists the users a user follows, newest first.
func (s *Service) Following(ctx context.Context, userID uint) ([]users.Summary, error) {
	if _, err := s.store.FollowTarget(models.TargetUser).Load(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.store.ListFollowedIDs(ctx, userID, models.TargetUser)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, ids), nil
}

func (s *Service) summaries(ctx context.Context, ids []uint) []users.Summary {
	found := map[uint]users.Summary{}
	if s.users != nil && len(ids) > 0 {
		var err error
		if found, err = s.users.Summaries(ctx, ids); err != nil {
			s.logger.WarnContext(ctx, "follower summaries unavailable", "error", err)
		}
	}
	out := make([]users.Summary, 0, len(ids))
	for _, id := range ids {
		summary, ok := found[id]
		if !ok {
			summary = users.Summary{ID: id}
		}
		out = append(out, summary)
	}
	return out
}
