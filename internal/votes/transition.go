package votes

import "github.com/emilythestrangee/debate-platform/backend/internal/models"

// Mutation is the change applied to the ledger entry of one voter.
type Mutation string

const (
	MutationCreate Mutation = "create"
	MutationDelete Mutation = "delete"
	MutationSwitch Mutation = "switch"
)

// Delta is a signed change to a target's counters.
type Delta struct {
	Up   int
	Down int
}

// Counters are the denormalized vote totals stored on a target.
type Counters struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

func (c Counters) Score() int {
	return c.Upvotes - c.Downvotes
}

// Apply adds d to c, never letting either counter go below zero.
func (c Counters) Apply(d Delta) Counters {
	return Counters{
		Upvotes:   max(c.Upvotes+d.Up, 0),
		Downvotes: max(c.Downvotes+d.Down, 0),
	}
}

// Transition describes what a vote request does to the ledger and counters.
// Result is empty when the vote was withdrawn.
type Transition struct {
	Mutation Mutation
	Delta    Delta
	Result   models.VoteDirection
}

// Decide maps the voter's existing direction ("" for none) and the
// requested one onto a transition. Repeating a vote withdraws it;
// voting the other way switches it.
func Decide(existing, requested models.VoteDirection) Transition {
	switch {
	case existing == "":
		return Transition{Mutation: MutationCreate, Delta: unit(requested, 1), Result: requested}
	case existing == requested:
		return Transition{Mutation: MutationDelete, Delta: unit(requested, -1)}
	default:
		d := unit(requested, 1)
		old := unit(existing, -1)
		return Transition{
			Mutation: MutationSwitch,
			Delta:    Delta{Up: d.Up + old.Up, Down: d.Down + old.Down},
			Result:   requested,
		}
	}
}

func unit(dir models.VoteDirection, n int) Delta {
	if dir == models.VoteUp {
		return Delta{Up: n}
	}
	return Delta{Down: n}
}
