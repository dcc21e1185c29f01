package votes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		existing models.VoteDirection
		request  models.VoteDirection
		want     Transition
	}{
		{"new upvote", "", models.VoteUp, Transition{MutationCreate, Delta{Up: 1}, models.VoteUp}},
		{"new downvote", "", models.VoteDown, Transition{MutationCreate, Delta{Down: 1}, models.VoteDown}},
		{"withdraw upvote", models.VoteUp, models.VoteUp, Transition{MutationDelete, Delta{Up: -1}, ""}},
		{"withdraw downvote", models.VoteDown, models.VoteDown, Transition{MutationDelete, Delta{Down: -1}, ""}},
		{"up to down", models.VoteUp, models.VoteDown, Transition{MutationSwitch, Delta{Up: -1, Down: 1}, models.VoteDown}},
		{"down to up", models.VoteDown, models.VoteUp, Transition{MutationSwitch, Delta{Up: 1, Down: -1}, models.VoteUp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.existing, tt.request))
		})
	}
}

func TestCountersApply_ClampsAtZero(t *testing.T) {
	c := Counters{Upvotes: 0, Downvotes: 2}.Apply(Delta{Up: -1, Down: 1})
	assert.Equal(t, Counters{Upvotes: 0, Downvotes: 3}, c)
	assert.Equal(t, -3, c.Score())
}

func TestDecide_RepeatNetsToNothing(t *testing.T) {
	for _, dir := range []models.VoteDirection{models.VoteUp, models.VoteDown} {
		first := Decide("", dir)
		second := Decide(first.Result, dir)

		c := Counters{Upvotes: 4, Downvotes: 4}.Apply(first.Delta).Apply(second.Delta)
		assert.Equal(t, Counters{Upvotes: 4, Downvotes: 4}, c)
		assert.Empty(t, second.Result)
	}
}
