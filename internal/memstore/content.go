package memstore

import (
	"context"

	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

func (s *Store) CreateClaim(_ context.Context, c *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt = s.clock.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.claims[c.ID] = &cp
	return nil
}

func (s *Store) GetClaim(_ context.Context, id uint) (models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return models.Claim{}, notFound(models.TargetClaim)
	}
	return *c, nil
}

func (s *Store) CreateEvidence(_ context.Context, e *models.Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	e.CreatedAt = s.clock.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	s.evidence[e.ID] = &cp
	return nil
}

func (s *Store) GetEvidence(_ context.Context, id uint) (models.Evidence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evidence[id]
	if !ok {
		return models.Evidence{}, notFound(models.TargetEvidence)
	}
	return *e, nil
}

func (s *Store) UpdateEvidenceStatus(_ context.Context, id uint, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evidence[id]
	if !ok {
		return notFound(models.TargetEvidence)
	}
	e.Status = status
	e.UpdatedAt = s.clock.Now().UTC()
	return nil
}

func (s *Store) DeleteEvidence(_ context.Context, id uint) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.evidence[id]; !ok {
		return notFound(models.TargetEvidence)
	}
	for rid, r := range s.replies {
		if r.ParentType == models.TargetEvidence && r.ParentID == id {
			s.dropTarget(models.TargetReply, rid)
			delete(s.replies, rid)
		}
	}
	s.dropTarget(models.TargetEvidence, id)
	delete(s.evidence, id)
	return nil
}

// dropTarget removes every vote and follow pointing at a target.
func (s *Store) dropTarget(t models.TargetType, id uint) {
	for k := range s.votes {
		if k.TargetType == t && k.TargetID == id {
			delete(s.votes, k)
		}
	}
	for k := range s.follows {
		if k.TargetType == t && k.TargetID == id {
			delete(s.follows, k)
		}
	}
}

func (s *Store) CreatePerspective(_ context.Context, p *models.Perspective) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = s.clock.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.perspectives[p.ID] = &cp
	return nil
}

func (s *Store) GetPerspective(_ context.Context, id uint) (models.Perspective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.perspectives[id]
	if !ok {
		return models.Perspective{}, notFound(models.TargetPerspective)
	}
	return *p, nil
}

func (s *Store) UpdatePerspectiveStatus(_ context.Context, id uint, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.perspectives[id]
	if !ok {
		return notFound(models.TargetPerspective)
	}
	p.Status = status
	p.UpdatedAt = s.clock.Now().UTC()
	return nil
}

func (s *Store) CreateReply(_ context.Context, r *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	r.CreatedAt = s.clock.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	s.replies[r.ID] = &cp
	return nil
}

var (
	_ votes.Store   = voteStore{}
	_ follows.Store = followStore{}
)
