// Package content creates and moderates claims and the evidence,
// perspectives and replies attached to them. Counter fields are never
// written here; they belong to the vote and follow services.
package content

import (
	"context"
	"log/slog"
	"strings"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/scoring"
)

type Store interface {
	CreateClaim(ctx context.Context, c *models.Claim) error
	GetClaim(ctx context.Context, id uint) (models.Claim, error)

	CreateEvidence(ctx context.Context, e *models.Evidence) error
	GetEvidence(ctx context.Context, id uint) (models.Evidence, error)
	UpdateEvidenceStatus(ctx context.Context, id uint, status models.Status) error
	// DeleteEvidence also removes its replies and every vote and follow
	// pointing at the evidence or those replies.
	DeleteEvidence(ctx context.Context, id uint) error

	CreatePerspective(ctx context.Context, p *models.Perspective) error
	GetPerspective(ctx context.Context, id uint) (models.Perspective, error)
	UpdatePerspectiveStatus(ctx context.Context, id uint, status models.Status) error

	CreateReply(ctx context.Context, r *models.Reply) error
}

// Scorer is the claim score aggregator as seen by content changes.
type Scorer interface {
	RecomputeQuietly(ctx context.Context, claimID uint)
	Policy() scoring.Policy
}

type Service struct {
	store  Store
	scorer Scorer
	logger *slog.Logger
}

func NewService(store Store, scorer Scorer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, scorer: scorer, logger: logger}
}

// Actor is the authenticated caller of a content operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) canModerate() bool {
	return models.CanModerate(a.Role)
}

type NewClaim struct {
	Title string
	Body  string
}

func (s *Service) CreateClaim(ctx context.Context, actor Actor, in NewClaim) (models.Claim, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Claim{}, apperr.Validation("Title is required")
	}
	c := models.Claim{
		Title:    title,
		Body:     in.Body,
		AuthorID: actor.UserID,
		Status:   models.StatusApproved,
	}
	if err := s.store.CreateClaim(ctx, &c); err != nil {
		return models.Claim{}, err
	}
	return c, nil
}

func (s *Service) GetClaim(ctx context.Context, id uint) (models.Claim, error) {
	return s.store.GetClaim(ctx, id)
}

type NewEvidence struct {
	ClaimID  uint
	Position models.Position
	Title    string
	URL      string
}

// CreateEvidence attaches evidence to a claim. It starts out pending.
func (s *Service) CreateEvidence(ctx context.Context, actor Actor, in NewEvidence) (models.Evidence, error) {
	if !in.Position.Valid() {
		return models.Evidence{}, apperr.Validation(`position must be "for" or "against"`)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Evidence{}, apperr.Validation("Title is required")
	}
	if _, err := s.store.GetClaim(ctx, in.ClaimID); err != nil {
		return models.Evidence{}, err
	}

	e := models.Evidence{
		ClaimID:  in.ClaimID,
		AuthorID: actor.UserID,
		Position: in.Position,
		Title:    title,
		URL:      in.URL,
		Status:   models.StatusPending,
	}
	if err := s.store.CreateEvidence(ctx, &e); err != nil {
		return models.Evidence{}, err
	}
	if s.scorer.Policy().Eligible(models.TargetEvidence, e.Status) {
		s.scorer.RecomputeQuietly(ctx, e.ClaimID)
	}
	return e, nil
}

// SetEvidenceStatus is a moderator action. The claim total is recomputed
// when the evidence moves into or out of the counted set.
func (s *Service) SetEvidenceStatus(ctx context.Context, actor Actor, id uint, status models.Status) (models.Evidence, error) {
	if !actor.canModerate() {
		return models.Evidence{}, apperr.Forbidden("Only moderators can change evidence status")
	}
	if !status.Valid() {
		return models.Evidence{}, apperr.Validation("Invalid status")
	}
	e, err := s.store.GetEvidence(ctx, id)
	if err != nil {
		return models.Evidence{}, err
	}
	if e.Status == status {
		return e, nil
	}
	if err := s.store.UpdateEvidenceStatus(ctx, id, status); err != nil {
		return models.Evidence{}, err
	}

	policy := s.scorer.Policy()
	if policy.Eligible(models.TargetEvidence, e.Status) != policy.Eligible(models.TargetEvidence, status) {
		s.scorer.RecomputeQuietly(ctx, e.ClaimID)
	}
	e.Status = status
	return e, nil
}

// DeleteEvidence removes evidence authored by the actor, or any evidence
// when the actor is a moderator, then recomputes the claim.
func (s *Service) DeleteEvidence(ctx context.Context, actor Actor, id uint) error {
	e, err := s.store.GetEvidence(ctx, id)
	if err != nil {
		return err
	}
	if e.AuthorID != actor.UserID && !actor.canModerate() {
		return apperr.Forbidden("You can only delete your own evidence")
	}
	if err := s.store.DeleteEvidence(ctx, id); err != nil {
		return err
	}
	s.scorer.RecomputeQuietly(ctx, e.ClaimID)
	return nil
}

type NewPerspective struct {
	ClaimID  uint
	Position models.Position
	Body     string
}

// CreatePerspective attaches an argument to a claim. Perspectives are
// approved on creation so the claim is recomputed straight away.
func (s *Service) CreatePerspective(ctx context.Context, actor Actor, in NewPerspective) (models.Perspective, error) {
	if !in.Position.Valid() {
		return models.Perspective{}, apperr.Validation(`position must be "for" or "against"`)
	}
	if strings.TrimSpace(in.Body) == "" {
		return models.Perspective{}, apperr.Validation("Body is required")
	}
	if _, err := s.store.GetClaim(ctx, in.ClaimID); err != nil {
		return models.Perspective{}, err
	}

	p := models.Perspective{
		ClaimID:  in.ClaimID,
		AuthorID: actor.UserID,
		Position: in.Position,
		Body:     in.Body,
		Status:   models.StatusApproved,
	}
	if err := s.store.CreatePerspective(ctx, &p); err != nil {
		return models.Perspective{}, err
	}
	s.scorer.RecomputeQuietly(ctx, p.ClaimID)
	return p, nil
}

func (s *Service) SetPerspectiveStatus(ctx context.Context, actor Actor, id uint, status models.Status) (models.Perspective, error) {
	if !actor.canModerate() {
		return models.Perspective{}, apperr.Forbidden("Only moderators can change perspective status")
	}
	if !status.Valid() {
		return models.Perspective{}, apperr.Validation("Invalid status")
	}
	p, err := s.store.GetPerspective(ctx, id)
	if err != nil {
		return models.Perspective{}, err
	}
	if p.Status == status {
		return p, nil
	}
	if err := s.store.UpdatePerspectiveStatus(ctx, id, status); err != nil {
		return models.Perspective{}, err
	}

	policy := s.scorer.Policy()
	if policy.Eligible(models.TargetPerspective, p.Status) != policy.Eligible(models.TargetPerspective, status) {
		s.scorer.RecomputeQuietly(ctx, p.ClaimID)
	}
	p.Status = status
	return p, nil
}

type NewReply struct {
	ParentType models.TargetType
	ParentID   uint
	Body       string
}

// CreateReply answers a piece of evidence or a perspective.
func (s *Service) CreateReply(ctx context.Context, actor Actor, in NewReply) (models.Reply, error) {
	if strings.TrimSpace(in.Body) == "" {
		return models.Reply{}, apperr.Validation("Body is required")
	}
	var err error
	switch in.ParentType {
	case models.TargetEvidence:
		_, err = s.store.GetEvidence(ctx, in.ParentID)
	case models.TargetPerspective:
		_, err = s.store.GetPerspective(ctx, in.ParentID)
	default:
		return models.Reply{}, apperr.Validation("Replies can only be posted on evidence or perspectives")
	}
	if err != nil {
		return models.Reply{}, err
	}

	r := models.Reply{
		ParentType: in.ParentType,
		ParentID:   in.ParentID,
		AuthorID:   actor.UserID,
		Body:       in.Body,
	}
	if err := s.store.CreateReply(ctx, &r); err != nil {
		return models.Reply{}, err
	}
	return r, nil
}
