package content_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/content"
	"github.com/emilythestrangee/debate-platform/backend/internal/memstore"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

var (
	author    = content.Actor{UserID: 1, Role: models.RoleUser}
	stranger  = content.Actor{UserID: 2, Role: models.RoleUser}
	moderator = content.Actor{UserID: 3, Role: models.RoleModerator}
)

func setup(t *testing.T) (*memstore.Store, *content.Service, *votes.Service, models.Claim) {
	t.Helper()
	store := memstore.New(nil)
	agg := scoring.NewAggregator(store, scoring.DefaultPolicy(), nil, nil)
	svc := content.NewService(store, agg, nil)
	voteSvc := votes.NewService(votes.Deps{Store: store.Votes(), Cascade: agg})

	claim, err := svc.CreateClaim(context.Background(), author, content.NewClaim{Title: "  Remote work is here to stay  "})
	require.NoError(t, err)
	return store, svc, voteSvc, claim
}

func upvote(t *testing.T, svc *votes.Service, tt models.TargetType, id, user uint) {
	t.Helper()
	_, err := svc.CastVote(context.Background(), votes.CastInput{TargetType: tt, TargetID: id, UserID: user, Direction: models.VoteUp})
	require.NoError(t, err)
}

func totalScore(t *testing.T, store *memstore.Store, claimID uint) int {
	t.Helper()
	c, err := store.GetClaim(context.Background(), claimID)
	require.NoError(t, err)
	return c.TotalScore
}

func TestCreateClaim(t *testing.T) {
	_, svc, _, claim := setup(t)
	assert.Equal(t, "Remote work is here to stay", claim.Title)
	assert.Equal(t, models.StatusApproved, claim.Status)

	_, err := svc.CreateClaim(context.Background(), author, content.NewClaim{Title: " "})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.GetClaim(context.Background(), 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestEvidenceApprovalMovesTotal(t *testing.T) {
	store, svc, voteSvc, claim := setup(t)
	ctx := context.Background()

	e, err := svc.CreateEvidence(ctx, author, content.NewEvidence{ClaimID: claim.ID, Position: models.PositionFor, Title: "Survey"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, e.Status)

	upvote(t, voteSvc, models.TargetEvidence, e.ID, 5)
	upvote(t, voteSvc, models.TargetEvidence, e.ID, 6)
	assert.Equal(t, 0, totalScore(t, store, claim.ID))

	_, err = svc.SetEvidenceStatus(ctx, stranger, e.ID, models.StatusApproved)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	e, err = svc.SetEvidenceStatus(ctx, moderator, e.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, e.Status)
	assert.Equal(t, 2, totalScore(t, store, claim.ID))

	_, err = svc.SetEvidenceStatus(ctx, moderator, e.ID, models.StatusFlagged)
	require.NoError(t, err)
	assert.Equal(t, 0, totalScore(t, store, claim.ID))

	_, err = svc.SetEvidenceStatus(ctx, moderator, e.ID, "archived")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestTwoApprovedEvidenceRows(t *testing.T) {
	store, svc, voteSvc, claim := setup(t)
	ctx := context.Background()

	strong, err := svc.CreateEvidence(ctx, author, content.NewEvidence{ClaimID: claim.ID, Position: models.PositionFor, Title: "A"})
	require.NoError(t, err)
	weak, err := svc.CreateEvidence(ctx, author, content.NewEvidence{ClaimID: claim.ID, Position: models.PositionAgainst, Title: "B"})
	require.NoError(t, err)
	for _, id := range []uint{strong.ID, weak.ID} {
		_, err := svc.SetEvidenceStatus(ctx, moderator, id, models.StatusApproved)
		require.NoError(t, err)
	}

	for user := uint(10); user < 13; user++ {
		upvote(t, voteSvc, models.TargetEvidence, strong.ID, user)
	}
	_, err = voteSvc.CastVote(ctx, votes.CastInput{TargetType: models.TargetEvidence, TargetID: weak.ID, UserID: 10, Direction: models.VoteDown})
	require.NoError(t, err)

	assert.Equal(t, 2, totalScore(t, store, claim.ID))
}

func TestDeleteEvidence(t *testing.T) {
	store, svc, voteSvc, claim := setup(t)
	ctx := context.Background()

	e, err := svc.CreateEvidence(ctx, author, content.NewEvidence{ClaimID: claim.ID, Position: models.PositionFor, Title: "A"})
	require.NoError(t, err)
	_, err = svc.SetEvidenceStatus(ctx, moderator, e.ID, models.StatusApproved)
	require.NoError(t, err)
	upvote(t, voteSvc, models.TargetEvidence, e.ID, 9)
	assert.Equal(t, 1, totalScore(t, store, claim.ID))

	assert.True(t, apperr.IsKind(svc.DeleteEvidence(ctx, stranger, e.ID), apperr.KindForbidden))

	require.NoError(t, svc.DeleteEvidence(ctx, author, e.ID))
	assert.Equal(t, 0, totalScore(t, store, claim.ID))
	assert.Zero(t, store.CountVotes(models.TargetEvidence, e.ID, models.VoteUp))

	assert.True(t, apperr.IsKind(svc.DeleteEvidence(ctx, moderator, e.ID), apperr.KindNotFound))
}

func TestPerspectiveLifecycle(t *testing.T) {
	store, svc, voteSvc, claim := setup(t)
	ctx := context.Background()

	p, err := svc.CreatePerspective(ctx, stranger, content.NewPerspective{ClaimID: claim.ID, Position: models.PositionAgainst, Body: "Offices matter"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, p.Status)

	upvote(t, voteSvc, models.TargetPerspective, p.ID, 20)
	assert.Equal(t, 1, totalScore(t, store, claim.ID))

	_, err = svc.SetPerspectiveStatus(ctx, moderator, p.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 0, totalScore(t, store, claim.ID))

	_, err = svc.CreatePerspective(ctx, stranger, content.NewPerspective{ClaimID: claim.ID, Position: "neutral", Body: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreatePerspective(ctx, stranger, content.NewPerspective{ClaimID: 999, Position: models.PositionFor, Body: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateReply(t *testing.T) {
	_, svc, _, claim := setup(t)
	ctx := context.Background()

	p, err := svc.CreatePerspective(ctx, author, content.NewPerspective{ClaimID: claim.ID, Position: models.PositionFor, Body: "Yes"})
	require.NoError(t, err)

	r, err := svc.CreateReply(ctx, stranger, content.NewReply{ParentType: models.TargetPerspective, ParentID: p.ID, Body: "Why?"})
	require.NoError(t, err)
	assert.Equal(t, stranger.UserID, r.AuthorID)
	assert.Zero(t, r.Upvotes)

	_, err = svc.CreateReply(ctx, stranger, content.NewReply{ParentType: models.TargetClaim, ParentID: claim.ID, Body: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreateReply(ctx, stranger, content.NewReply{ParentType: models.TargetEvidence, ParentID: 999, Body: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
