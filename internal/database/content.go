package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

func (s *Store) CreateClaim(ctx context.Context, c *models.Claim) error {
	return translate(s.db.WithContext(ctx).Create(c).Error, "create claim")
}

func (s *Store) GetClaim(ctx context.Context, id uint) (models.Claim, error) {
	var c models.Claim
	if err := s.first(ctx, &c, id, models.TargetClaim); err != nil {
		return models.Claim{}, err
	}
	return c, nil
}

func (s *Store) CreateEvidence(ctx context.Context, e *models.Evidence) error {
	return translate(s.db.WithContext(ctx).Create(e).Error, "create evidence")
}

func (s *Store) GetEvidence(ctx context.Context, id uint) (models.Evidence, error) {
	var e models.Evidence
	if err := s.first(ctx, &e, id, models.TargetEvidence); err != nil {
		return models.Evidence{}, err
	}
	return e, nil
}

func (s *Store) UpdateEvidenceStatus(ctx context.Context, id uint, status models.Status) error {
	return s.setStatus(ctx, &models.Evidence{}, id, status, models.TargetEvidence)
}

// DeleteEvidence removes the evidence, its replies and every vote and
// follow that points at any of them, in one transaction.
func (s *Store) DeleteEvidence(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Reply{}).
			Where("parent_type = ? AND parent_id = ?", models.TargetEvidence, id).
			Pluck("id", &replyIDs).Error; err != nil {
			return translate(err, "load replies")
		}

		if len(replyIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetReply, replyIDs).Delete(&models.Vote{}).Error; err != nil {
				return translate(err, "delete reply votes")
			}
			if err := tx.Where("id IN ?", replyIDs).Delete(&models.Reply{}).Error; err != nil {
				return translate(err, "delete replies")
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetEvidence, id).Delete(&models.Vote{}).Error; err != nil {
			return translate(err, "delete evidence votes")
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetEvidence, id).Delete(&models.Follow{}).Error; err != nil {
			return translate(err, "delete evidence follows")
		}

		res := tx.Delete(&models.Evidence{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete evidence")
		}
		if res.RowsAffected == 0 {
			return tables[models.TargetEvidence].notFound()
		}
		return nil
	})
}

func (s *Store) CreatePerspective(ctx context.Context, p *models.Perspective) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create perspective")
}

func (s *Store) GetPerspective(ctx context.Context, id uint) (models.Perspective, error) {
	var p models.Perspective
	if err := s.first(ctx, &p, id, models.TargetPerspective); err != nil {
		return models.Perspective{}, err
	}
	return p, nil
}

func (s *Store) UpdatePerspectiveStatus(ctx context.Context, id uint, status models.Status) error {
	return s.setStatus(ctx, &models.Perspective{}, id, status, models.TargetPerspective)
}

func (s *Store) CreateReply(ctx context.Context, r *models.Reply) error {
	return translate(s.db.WithContext(ctx).Create(r).Error, "create reply")
}

func (s *Store) first(ctx context.Context, dest interface{}, id uint, t models.TargetType) error {
	err := s.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tables[t].notFound()
	}
	return translate(err, "load "+string(t))
}

func (s *Store) setStatus(ctx context.Context, model interface{}, id uint, status models.Status, t models.TargetType) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "update "+string(t)+" status")
	}
	if res.RowsAffected == 0 {
		return tables[t].notFound()
	}
	return nil
}
