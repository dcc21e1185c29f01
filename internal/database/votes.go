package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

type voteRepo struct {
	db *gorm.DB
}

// Votes returns the vote ledger backed by the votes table.
func (s *Store) Votes() votes.Store {
	return voteRepo{db: s.db}
}

func (r voteRepo) Transaction(ctx context.Context, fn func(tx votes.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(voteRepo{db: tx})
	})
}

func (r voteRepo) Target(t models.TargetType) votes.TargetAdapter {
	return voteTarget{db: r.db, t: t, spec: tables[t]}
}

func byKey(db *gorm.DB, k votes.Key) *gorm.DB {
	return db.Where("target_type = ? AND target_id = ? AND user_id = ?", k.TargetType, k.TargetID, k.UserID)
}

// FindVote reads the entry FOR UPDATE so a concurrent switch or withdraw
// waits for this transaction.
func (r voteRepo) FindVote(ctx context.Context, k votes.Key) (votes.Record, bool, error) {
	var v models.Vote
	err := byKey(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), k).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return votes.Record{}, false, nil
	}
	if err != nil {
		return votes.Record{}, false, translate(err, "load vote")
	}
	return toRecord(v), true, nil
}

func (r voteRepo) CreateVote(ctx context.Context, rec votes.Record) error {
	v := models.Vote{
		TargetType: rec.Key.TargetType,
		TargetID:   rec.Key.TargetID,
		UserID:     rec.Key.UserID,
		Direction:  rec.Direction,
		CreatedAt:  rec.CreatedAt,
	}
	return translate(r.db.WithContext(ctx).Create(&v).Error, "create vote")
}

func (r voteRepo) UpdateVoteDirection(ctx context.Context, k votes.Key, dir models.VoteDirection) error {
	res := byKey(r.db.WithContext(ctx).Model(&models.Vote{}), k).Update("direction", dir)
	if res.Error != nil {
		return translate(res.Error, "update vote")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Vote not found")
	}
	return nil
}

func (r voteRepo) DeleteVote(ctx context.Context, k votes.Key) error {
	return translate(byKey(r.db.WithContext(ctx), k).Delete(&models.Vote{}).Error, "delete vote")
}

func (r voteRepo) ListVotes(ctx context.Context, t models.TargetType, id uint, filter models.VoteDirection) ([]votes.Record, error) {
	q := r.db.WithContext(ctx).Where("target_type = ? AND target_id = ?", t, id)
	if filter != "" {
		q = q.Where("direction = ?", filter)
	}
	var rows []models.Vote
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, translate(err, "load votes")
	}

	out := make([]votes.Record, 0, len(rows))
	for _, v := range rows {
		out = append(out, toRecord(v))
	}
	return out, nil
}

func toRecord(v models.Vote) votes.Record {
	return votes.Record{
		ID:        v.ID,
		Key:       votes.Key{TargetType: v.TargetType, TargetID: v.TargetID, UserID: v.UserID},
		Direction: v.Direction,
		CreatedAt: v.CreatedAt,
	}
}

// voteTarget adjusts counters with a single UPDATE so concurrent voters
// never overwrite each other's increments.
type voteTarget struct {
	db   *gorm.DB
	t    models.TargetType
	spec tableSpec
}

type counterRow struct {
	ID        uint
	AuthorID  uint
	ClaimID   uint
	Upvotes   int
	Downvotes int
}

func (a voteTarget) Load(ctx context.Context, id uint) (votes.Target, error) {
	if !a.spec.votable {
		return votes.Target{}, apperr.Validation("Invalid target type")
	}
	cols := []string{"id", "author_id", "upvotes", "downvotes"}
	if a.spec.hasClaim {
		cols = append(cols, "claim_id")
	}

	var row counterRow
	err := a.db.WithContext(ctx).Table(a.spec.table).Select(strings.Join(cols, ", ")).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return votes.Target{}, a.spec.notFound()
	}
	if err != nil {
		return votes.Target{}, translate(err, "load "+strings.ToLower(a.spec.name))
	}
	return votes.Target{
		Type:     a.t,
		ID:       row.ID,
		AuthorID: row.AuthorID,
		ClaimID:  row.ClaimID,
		Counters: votes.Counters{Upvotes: row.Upvotes, Downvotes: row.Downvotes},
	}, nil
}

func (a voteTarget) AdjustCounters(ctx context.Context, id uint, d votes.Delta) (votes.Counters, error) {
	if !a.spec.votable {
		return votes.Counters{}, apperr.Validation("Invalid target type")
	}
	updates := map[string]interface{}{
		"upvotes":   gorm.Expr("GREATEST(upvotes + ?, 0)", d.Up),
		"downvotes": gorm.Expr("GREATEST(downvotes + ?, 0)", d.Down),
	}
	if a.spec.score {
		// SET expressions see the old row, so score is derived the same way
		updates["score"] = gorm.Expr("GREATEST(upvotes + ?, 0) - GREATEST(downvotes + ?, 0)", d.Up, d.Down)
	}

	db := a.db.WithContext(ctx)
	res := db.Table(a.spec.table).Where("id = ?", id).UpdateColumns(updates)
	if res.Error != nil {
		return votes.Counters{}, translate(res.Error, "update counters")
	}
	if res.RowsAffected == 0 {
		return votes.Counters{}, a.spec.notFound()
	}

	var c votes.Counters
	if err := db.Table(a.spec.table).Select("upvotes, downvotes").Where("id = ?", id).Take(&c).Error; err != nil {
		return votes.Counters{}, translate(err, "load counters")
	}
	return c, nil
}
