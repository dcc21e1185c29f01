package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

func seedEvidence(t *testing.T, s *Store) models.Evidence {
	t.Helper()
	ctx := context.Background()
	c := models.Claim{Title: "c", AuthorID: 1, Status: models.StatusApproved}
	require.NoError(t, s.CreateClaim(ctx, &c))
	e := models.Evidence{ClaimID: c.ID, AuthorID: 1, Position: models.PositionFor, Title: "e", Status: models.StatusApproved}
	require.NoError(t, s.CreateEvidence(ctx, &e))
	return e
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	s := New(nil)
	e := seedEvidence(t, s)
	ctx := context.Background()
	key := votes.Key{TargetType: models.TargetEvidence, TargetID: e.ID, UserID: 7}

	boom := errors.New("boom")
	err := s.Votes().Transaction(ctx, func(tx votes.Store) error {
		require.NoError(t, tx.CreateVote(ctx, votes.Record{Key: key, Direction: models.VoteUp, CreatedAt: time.Now()}))
		_, err := tx.Target(models.TargetEvidence).AdjustCounters(ctx, e.ID, votes.Delta{Up: 1})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, err := s.Votes().FindVote(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	got, err := s.GetEvidence(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Upvotes)
	assert.Equal(t, 0, got.Score)
}

func TestCreateVote_Conflict(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	key := votes.Key{TargetType: models.TargetClaim, TargetID: 1, UserID: 1}

	require.NoError(t, s.Votes().CreateVote(ctx, votes.Record{Key: key, Direction: models.VoteUp}))
	err := s.Votes().CreateVote(ctx, votes.Record{Key: key, Direction: models.VoteDown})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestAdjustCounters_ClampsAndScores(t *testing.T) {
	s := New(nil)
	e := seedEvidence(t, s)
	ctx := context.Background()
	adapter := s.Votes().Target(models.TargetEvidence)

	c, err := adapter.AdjustCounters(ctx, e.ID, votes.Delta{Up: -1, Down: 2})
	require.NoError(t, err)
	assert.Equal(t, votes.Counters{Upvotes: 0, Downvotes: 2}, c)

	got, _ := s.GetEvidence(ctx, e.ID)
	assert.Equal(t, -2, got.Score)
}

func TestLoad_UnknownTarget(t *testing.T) {
	s := New(nil)
	_, err := s.Votes().Target(models.TargetReply).Load(context.Background(), 42)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, "Reply not found", apperr.Message(err))

	_, err = s.Follows().FollowTarget(models.TargetUser).Load(context.Background(), 42)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteEvidence_Cascades(t *testing.T) {
	s := New(nil)
	e := seedEvidence(t, s)
	ctx := context.Background()

	r := models.Reply{ParentType: models.TargetEvidence, ParentID: e.ID, AuthorID: 2, Body: "hi"}
	require.NoError(t, s.CreateReply(ctx, &r))
	require.NoError(t, s.Votes().CreateVote(ctx, votes.Record{Key: votes.Key{TargetType: models.TargetEvidence, TargetID: e.ID, UserID: 3}, Direction: models.VoteUp}))
	require.NoError(t, s.Votes().CreateVote(ctx, votes.Record{Key: votes.Key{TargetType: models.TargetReply, TargetID: r.ID, UserID: 3}, Direction: models.VoteUp}))
	require.NoError(t, s.Follows().CreateFollow(ctx, follows.Key{TargetType: models.TargetEvidence, TargetID: e.ID, UserID: 3}, time.Now()))

	require.NoError(t, s.DeleteEvidence(ctx, e.ID))

	assert.Zero(t, s.CountVotes(models.TargetEvidence, e.ID, models.VoteUp))
	assert.Zero(t, s.CountVotes(models.TargetReply, r.ID, models.VoteUp))
	following, _ := s.Follows().FindFollow(ctx, follows.Key{TargetType: models.TargetEvidence, TargetID: e.ID, UserID: 3})
	assert.False(t, following)

	_, err := s.GetEvidence(ctx, e.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListNotifications_NewestFirst(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: 1, Title: title}))
	}
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: 2, Title: "other"}))

	got, err := s.ListNotifications(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Title)
	assert.Equal(t, "b", got[1].Title)
}
