package models

// TargetType names the kind of entity a vote or follow points at.
type TargetType string

const (
	TargetClaim       TargetType = "claim"
	TargetEvidence    TargetType = "evidence"
	TargetPerspective TargetType = "perspective"
	TargetReply       TargetType = "reply"
	TargetUser        TargetType = "user"
)

// Votable reports whether votes can be cast on the target type.
func (t TargetType) Votable() bool {
	switch t {
	case TargetClaim, TargetEvidence, TargetPerspective, TargetReply:
		return true
	}
	return false
}

// Followable reports whether the target type can be followed.
func (t TargetType) Followable() bool {
	switch t {
	case TargetClaim, TargetEvidence, TargetPerspective, TargetUser:
		return true
	}
	return false
}

// CascadesToClaim reports whether a counter change on this type moves the
// owning claim's total score.
func (t TargetType) CascadesToClaim() bool {
	return t == TargetEvidence || t == TargetPerspective
}

// VoteDirection is the wire value of a vote ("upvote" / "downvote").
type VoteDirection string

const (
	VoteUp   VoteDirection = "upvote"
	VoteDown VoteDirection = "downvote"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Status is the moderation state of a claim, evidence or perspective.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusFlagged  Status = "flagged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged:
		return true
	}
	return false
}

// Position is the side a piece of evidence or a perspective takes.
type Position string

const (
	PositionFor     Position = "for"
	PositionAgainst Position = "against"
)

func (p Position) Valid() bool {
	return p == PositionFor || p == PositionAgainst
}
