package votes

import (
	"context"
	"sort"
	"time"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/users"
)

// Voter is one row of a public voter listing.
type Voter struct {
	ID        uint                 `json:"id"`
	UserID    uint                 `json:"userId"`
	Direction models.VoteDirection `json:"voteType"`
	User      users.Summary        `json:"user"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ListVoters returns who voted on a target, newest first. An unknown
// target simply has no voters.
func (s *Service) ListVoters(ctx context.Context, t models.TargetType, id uint, filter models.VoteDirection) ([]Voter, error) {
	if !t.Votable() {
		return nil, apperr.Validation("Invalid target type")
	}
	if id == 0 {
		return nil, apperr.Validation("Invalid " + string(t) + " ID")
	}
	if filter != "" && !filter.Valid() {
		return nil, apperr.Validation(`voteType must be "upvote" or "downvote"`)
	}

	records, err := s.store.ListVotes(ctx, t, id, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.Key.UserID)
	}
	summaries := map[uint]users.Summary{}
	if s.users != nil && len(ids) > 0 {
		summaries, err = s.users.Summaries(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "voter summaries unavailable", "target", t, "target_id", id, "error", err)
		}
	}

	voters := make([]Voter, 0, len(records))
	for _, r := range records {
		summary, ok := summaries[r.Key.UserID]
		if !ok {
			summary = users.Summary{ID: r.Key.UserID}
		}
		voters = append(voters, Voter{
			ID:        r.ID,
			UserID:    r.Key.UserID,
			Direction: r.Direction,
			User:      summary,
			CreatedAt: r.CreatedAt,
		})
	}
	return voters, nil
}
