//go:build integration

package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

var testService Service

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("debate_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}

	testService, err = New(Config{DSN: dsn, Name: "debate_test", LogLevel: "silent"}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = testService.Close()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
	}
	os.Exit(code)
}

// setupStore truncates every table and returns a fresh store.
func setupStore(t *testing.T) *Store {
	t.Helper()
	db := testService.GetDB()
	err := db.Exec("TRUNCATE users, claims, evidence, perspectives, replies, votes, follows, notifications RESTART IDENTITY CASCADE").Error
	require.NoError(t, err)
	return NewStore(db)
}

func seed(t *testing.T, s *Store) (models.Claim, models.Evidence) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "ada", Email: "ada@example.com"}))
	c := models.Claim{Title: "Claim", AuthorID: 1}
	require.NoError(t, s.CreateClaim(ctx, &c))
	e := models.Evidence{ClaimID: c.ID, AuthorID: 1, Position: models.PositionFor, Title: "Evidence", Status: models.StatusApproved}
	require.NoError(t, s.CreateEvidence(ctx, &e))
	return c, e
}

func TestHealth(t *testing.T) {
	stats := testService.Health()
	assert.Equal(t, "up", stats["status"])
}

func TestVoteService_AgainstPostgres(t *testing.T) {
	s := setupStore(t)
	claim, ev := seed(t, s)
	ctx := context.Background()
	agg := scoring.NewAggregator(s, scoring.DefaultPolicy(), nil, nil)
	svc := votes.NewService(votes.Deps{Store: s.Votes(), Cascade: agg})

	res, err := svc.CastVote(ctx, votes.CastInput{TargetType: models.TargetEvidence, TargetID: ev.ID, UserID: 2, Direction: models.VoteUp})
	require.NoError(t, err)
	assert.Equal(t, votes.Counters{Upvotes: 1}, res.Counters)
	require.NotNil(t, res.Claim)
	assert.Equal(t, 1, res.Claim.TotalScore)

	res, err = svc.CastVote(ctx, votes.CastInput{TargetType: models.TargetEvidence, TargetID: ev.ID, UserID: 2, Direction: models.VoteDown})
	require.NoError(t, err)
	assert.Equal(t, votes.Counters{Upvotes: 0, Downvotes: 1}, res.Counters)

	got, err := s.GetEvidence(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Score)

	c, err := s.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, c.TotalScore)

	_, err = svc.CastVote(ctx, votes.CastInput{TargetType: models.TargetEvidence, TargetID: 999, UserID: 2, Direction: models.VoteUp})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestVoteService_ConcurrentFirstVotes(t *testing.T) {
	s := setupStore(t)
	_, ev := seed(t, s)
	ctx := context.Background()
	svc := votes.NewService(votes.Deps{Store: s.Votes()})

	var wg sync.WaitGroup
	for uid := uint(100); uid < 130; uid++ {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, err := svc.CastVote(ctx, votes.CastInput{TargetType: models.TargetEvidence, TargetID: ev.ID, UserID: uid, Direction: models.VoteUp})
			assert.NoError(t, err)
		}(uid)
	}
	wg.Wait()

	var ledger int64
	require.NoError(t, s.db.Model(&models.Vote{}).Where("target_type = ? AND target_id = ?", models.TargetEvidence, ev.ID).Count(&ledger).Error)
	got, err := s.GetEvidence(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int(ledger), got.Upvotes)
	assert.Equal(t, 30, got.Upvotes)
}

func TestCreateVote_DuplicateIsConflict(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	key := votes.Key{TargetType: models.TargetClaim, TargetID: 1, UserID: 1}

	require.NoError(t, s.Votes().CreateVote(ctx, votes.Record{Key: key, Direction: models.VoteUp, CreatedAt: time.Now()}))
	err := s.Votes().CreateVote(ctx, votes.Record{Key: key, Direction: models.VoteDown, CreatedAt: time.Now()})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestFollowToggle_AgainstPostgres(t *testing.T) {
	s := setupStore(t)
	claim, _ := seed(t, s)
	ctx := context.Background()
	svc := follows.NewService(follows.Deps{Store: s.Follows()})

	res, err := svc.Toggle(ctx, follows.ToggleInput{TargetType: models.TargetClaim, TargetID: claim.ID, UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, follows.Result{TargetType: models.TargetClaim, TargetID: claim.ID, IsFollowing: true, FollowCount: 1}, res)

	res, err = svc.Toggle(ctx, follows.ToggleInput{TargetType: models.TargetClaim, TargetID: claim.ID, UserID: 5})
	require.NoError(t, err)
	assert.False(t, res.IsFollowing)
	assert.Equal(t, 0, res.FollowCount)
}

func TestDeleteEvidence_Cascades(t *testing.T) {
	s := setupStore(t)
	_, ev := seed(t, s)
	ctx := context.Background()

	r := models.Reply{ParentType: models.TargetEvidence, ParentID: ev.ID, AuthorID: 1, Body: "hm"}
	require.NoError(t, s.CreateReply(ctx, &r))
	require.NoError(t, s.Votes().CreateVote(ctx, votes.Record{Key: votes.Key{TargetType: models.TargetReply, TargetID: r.ID, UserID: 2}, Direction: models.VoteUp, CreatedAt: time.Now()}))
	require.NoError(t, s.Follows().CreateFollow(ctx, follows.Key{TargetType: models.TargetEvidence, TargetID: ev.ID, UserID: 2}, time.Now()))

	require.NoError(t, s.DeleteEvidence(ctx, ev.ID))

	for _, model := range []interface{}{&models.Vote{}, &models.Follow{}, &models.Reply{}, &models.Evidence{}} {
		var n int64
		require.NoError(t, s.db.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
	assert.True(t, apperr.IsKind(s.DeleteEvidence(ctx, ev.ID), apperr.KindNotFound))
}

func TestSumNetVotes_RespectsStatuses(t *testing.T) {
	s := setupStore(t)
	claim, ev := seed(t, s)
	ctx := context.Background()

	pending := models.Evidence{ClaimID: claim.ID, AuthorID: 1, Position: models.PositionAgainst, Title: "P", Status: models.StatusPending}
	require.NoError(t, s.CreateEvidence(ctx, &pending))
	for _, id := range []uint{ev.ID, pending.ID} {
		require.NoError(t, s.db.Model(&models.Evidence{}).Where("id = ?", id).
			UpdateColumns(map[string]interface{}{"upvotes": 3, "downvotes": gorm.Expr("1")}).Error)
	}

	sum, err := s.SumNetVotes(ctx, models.TargetEvidence, claim.ID, []models.Status{models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 2, sum)

	sum, err = s.SumNetVotes(ctx, models.TargetEvidence, claim.ID, []models.Status{models.StatusApproved, models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 4, sum)
}
