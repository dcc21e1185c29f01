package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type followRepo struct {
	db *gorm.DB
}

// Follows returns the follow ledger backed by the follows table.
func (s *Store) Follows() follows.Store {
	return followRepo{db: s.db}
}

func (r followRepo) Transaction(ctx context.Context, fn func(tx follows.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(followRepo{db: tx})
	})
}

func (r followRepo) FollowTarget(t models.TargetType) follows.TargetAdapter {
	return followTarget{db: r.db, t: t, spec: tables[t]}
}

func followKey(db *gorm.DB, k follows.Key) *gorm.DB {
	return db.Where("target_type = ? AND target_id = ? AND user_id = ?", k.TargetType, k.TargetID, k.UserID)
}

func (r followRepo) FindFollow(ctx context.Context, k follows.Key) (bool, error) {
	var f models.Follow
	err := followKey(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), k).Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, translate(err, "load follow")
	}
	return true, nil
}

func (r followRepo) CreateFollow(ctx context.Context, k follows.Key, at time.Time) error {
	f := models.Follow{TargetType: k.TargetType, TargetID: k.TargetID, UserID: k.UserID, CreatedAt: at}
	return translate(r.db.WithContext(ctx).Create(&f).Error, "create follow")
}

func (r followRepo) DeleteFollow(ctx context.Context, k follows.Key) error {
	return translate(followKey(r.db.WithContext(ctx), k).Delete(&models.Follow{}).Error, "delete follow")
}

func (r followRepo) ListFollowerIDs(ctx context.Context, t models.TargetType, id uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("target_type = ? AND target_id = ?", t, id).
		Order("created_at DESC, id DESC").
		Pluck("user_id", &ids).Error
	return ids, translate(err, "load followers")
}

func (r followRepo) ListFollowedIDs(ctx context.Context, userID uint, t models.TargetType) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND target_type = ?", userID, t).
		Order("created_at DESC, id DESC").
		Pluck("target_id", &ids).Error
	return ids, translate(err, "load followed")
}

type followTarget struct {
	db   *gorm.DB
	t    models.TargetType
	spec tableSpec
}

func (a followTarget) Load(ctx context.Context, id uint) (follows.Target, error) {
	if !a.spec.followers {
		return follows.Target{}, apperr.Validation("Invalid target type")
	}
	owner := "author_id"
	if a.t == models.TargetUser {
		owner = "id"
	}

	var row struct {
		ID          uint
		OwnerID     uint
		FollowCount int
	}
	err := a.db.WithContext(ctx).
		Table(a.spec.table).
		Select("id, "+owner+" AS owner_id, follow_count").
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return follows.Target{}, a.spec.notFound()
	}
	if err != nil {
		return follows.Target{}, translate(err, "load follow target")
	}
	return follows.Target{Type: a.t, ID: row.ID, OwnerID: row.OwnerID, FollowCount: row.FollowCount}, nil
}

func (a followTarget) AdjustFollowCount(ctx context.Context, id uint, delta int) (int, error) {
	if !a.spec.followers {
		return 0, apperr.Validation("Invalid target type")
	}
	db := a.db.WithContext(ctx)
	res := db.Table(a.spec.table).Where("id = ?", id).
		UpdateColumn("follow_count", gorm.Expr("GREATEST(follow_count + ?, 0)", delta))
	if res.Error != nil {
		return 0, translate(res.Error, "update follow count")
	}
	if res.RowsAffected == 0 {
		return 0, a.spec.notFound()
	}

	var count int
	if err := db.Table(a.spec.table).Select("follow_count").Where("id = ?", id).Scan(&count).Error; err != nil {
		return 0, translate(err, "load follow count")
	}
	return count, nil
}
