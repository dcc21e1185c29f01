package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

type VoteHandler struct {
	responder
	votes *votes.Service
}

// Vote returns the POST /{targets}/:id/vote handler for one target type.
func (h *VoteHandler) Vote(t models.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, t)
		if err != nil {
			h.fail(c, err)
			return
		}
		caller, err := identity(c)
		if err != nil {
			h.fail(c, err)
			return
		}

		var input struct {
			VoteType string `json:"voteType" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			h.fail(c, apperr.Validation("voteType is required"))
			return
		}

		res, err := h.votes.CastVote(c.Request.Context(), votes.CastInput{
			TargetType: t,
			TargetID:   id,
			UserID:     caller.UserID,
			VoterName:  caller.Username,
			Direction:  models.VoteDirection(input.VoteType),
		})
		if err != nil {
			h.fail(c, err)
			return
		}

		target := gin.H{
			"id":        res.TargetID,
			"upvotes":   res.Counters.Upvotes,
			"downvotes": res.Counters.Downvotes,
		}
		if t != models.TargetClaim {
			target["score"] = res.Counters.Score()
		}
		body := gin.H{
			"success":  true,
			labels[t]:  target,
			"userVote": voteValue(res.UserVote()),
		}
		if res.Claim != nil {
			body["claim"] = res.Claim
		}
		c.JSON(http.StatusOK, body)
	}
}

// Voters returns the public GET /{targets}/:id/voters handler.
func (h *VoteHandler) Voters(t models.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, t)
		if err != nil {
			h.fail(c, err)
			return
		}

		voters, err := h.votes.ListVoters(c.Request.Context(), t, id, models.VoteDirection(c.Query("voteType")))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "voters": voters})
	}
}
