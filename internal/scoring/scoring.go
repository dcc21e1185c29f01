// Package scoring keeps a claim's total score in line with the votes on its
// evidence and perspectives.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/emilythestrangee/debate-platform/backend/internal/metrics"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

// Policy decides which children count towards a claim and how much.
type Policy struct {
	EvidenceStatuses    []models.Status
	PerspectiveStatuses []models.Status
	EvidenceWeight      int
	PerspectiveWeight   int
}

// DefaultPolicy counts approved evidence and perspectives with equal weight.
func DefaultPolicy() Policy {
	return Policy{
		EvidenceStatuses:    []models.Status{models.StatusApproved},
		PerspectiveStatuses: []models.Status{models.StatusApproved},
		EvidenceWeight:      1,
		PerspectiveWeight:   1,
	}
}

// Eligible reports whether a child of the given kind and status counts.
func (p Policy) Eligible(kind models.TargetType, status models.Status) bool {
	switch kind {
	case models.TargetEvidence:
		return slices.Contains(p.EvidenceStatuses, status)
	case models.TargetPerspective:
		return slices.Contains(p.PerspectiveStatuses, status)
	}
	return false
}

type Store interface {
	// SumNetVotes returns Σ(upvotes - downvotes) over the claim's children
	// of the given kind whose status is in statuses.
	SumNetVotes(ctx context.Context, kind models.TargetType, claimID uint, statuses []models.Status) (int, error)
	SetTotalScore(ctx context.Context, claimID uint, total int) error
}

type Aggregator struct {
	store   Store
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAggregator(store Store, policy Policy, logger *slog.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: store, policy: policy, logger: logger, metrics: m}
}

func (a *Aggregator) Policy() Policy {
	return a.policy
}

// Recompute rebuilds the claim's total from the current child counters and
// stores it. It never reuses a previous total.
func (a *Aggregator) Recompute(ctx context.Context, claimID uint) (int, error) {
	total, err := a.recompute(ctx, claimID)
	a.metrics.ObserveRecompute(err)
	return total, err
}

func (a *Aggregator) recompute(ctx context.Context, claimID uint) (int, error) {
	evidence, err := a.store.SumNetVotes(ctx, models.TargetEvidence, claimID, a.policy.EvidenceStatuses)
	if err != nil {
		return 0, fmt.Errorf("sum evidence for claim %d: %w", claimID, err)
	}
	perspectives, err := a.store.SumNetVotes(ctx, models.TargetPerspective, claimID, a.policy.PerspectiveStatuses)
	if err != nil {
		return 0, fmt.Errorf("sum perspectives for claim %d: %w", claimID, err)
	}

	total := evidence*a.policy.EvidenceWeight + perspectives*a.policy.PerspectiveWeight
	if err := a.store.SetTotalScore(ctx, claimID, total); err != nil {
		return 0, fmt.Errorf("store total score for claim %d: %w", claimID, err)
	}
	return total, nil
}

// RecomputeQuietly is Recompute for callers whose own operation has already
// succeeded: failures are logged and dropped.
func (a *Aggregator) RecomputeQuietly(ctx context.Context, claimID uint) {
	if _, err := a.Recompute(ctx, claimID); err != nil {
		a.logger.WarnContext(ctx, "claim score recompute failed", "claim_id", claimID, "error", err)
	}
}
