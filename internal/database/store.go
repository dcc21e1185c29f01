package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/content"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
	"github.com/emilythestrangee/debate-platform/backend/internal/users"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

// Store implements the service store ports on top of gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// tableSpec describes where a target type keeps its counters.
type tableSpec struct {
	table     string
	name      string
	votable   bool
	score     bool
	followers bool
	hasClaim  bool
}

var tables = map[models.TargetType]tableSpec{
	models.TargetClaim:       {table: "claims", name: "Claim", votable: true, followers: true},
	models.TargetEvidence:    {table: "evidence", name: "Evidence", votable: true, score: true, followers: true, hasClaim: true},
	models.TargetPerspective: {table: "perspectives", name: "Perspective", votable: true, score: true, followers: true, hasClaim: true},
	models.TargetReply:       {table: "replies", name: "Reply", votable: true, score: true},
	models.TargetUser:        {table: "users", name: "User", followers: true},
}

func (t tableSpec) notFound() error {
	return apperr.NotFound(t.name + " not found")
}

const uniqueViolation = "23505"

// translate maps driver errors onto the apperr taxonomy.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Wrap(apperr.KindConflict, "Duplicate "+msg, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, "Duplicate "+msg, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperr.Internal("Failed to "+msg, err)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	return translate(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, tables[models.TargetUser].notFound()
	}
	return u, translate(err, "load user")
}

// FindUsers implements users.Source.
func (s *Store) FindUsers(ctx context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, translate(err, "load users")
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate(s.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (s *Store) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, translate(err, "load notifications")
}

// SumNetVotes implements scoring.Store.
func (s *Store) SumNetVotes(ctx context.Context, kind models.TargetType, claimID uint, statuses []models.Status) (int, error) {
	spec, ok := tables[kind]
	if !ok || !spec.hasClaim {
		return 0, apperr.Validation("Invalid target type")
	}
	if len(statuses) == 0 {
		return 0, nil
	}

	var sum int
	err := s.db.WithContext(ctx).
		Table(spec.table).
		Select("COALESCE(SUM(upvotes - downvotes), 0)").
		Where("claim_id = ? AND status IN ?", claimID, statuses).
		Scan(&sum).Error
	return sum, translate(err, "sum "+spec.table+" votes")
}

func (s *Store) SetTotalScore(ctx context.Context, claimID uint, total int) error {
	res := s.db.WithContext(ctx).Model(&models.Claim{}).Where("id = ?", claimID).Update("total_score", total)
	if res.Error != nil {
		return translate(res.Error, "update total score")
	}
	if res.RowsAffected == 0 {
		return tables[models.TargetClaim].notFound()
	}
	return nil
}

var (
	_ content.Store     = (*Store)(nil)
	_ scoring.Store     = (*Store)(nil)
	_ users.Source      = (*Store)(nil)
	_ notify.InboxStore = (*Store)(nil)
	_ votes.Store       = voteRepo{}
	_ follows.Store     = followRepo{}
)
