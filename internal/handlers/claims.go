package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/content"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/middleware"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

type ContentHandler struct {
	responder
	content *content.Service
	votes   *votes.Service
	follows *follows.Service
}

func actor(id middleware.Identity) content.Actor {
	return content.Actor{UserID: id.UserID, Role: id.Role}
}

// CreateClaim creates a new claim (PROTECTED - requires authentication)
func (h *ContentHandler) CreateClaim(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var input struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.Validation("Title is required"))
		return
	}

	claim, err := h.content.CreateClaim(c.Request.Context(), actor(caller), content.NewClaim{Title: input.Title, Body: input.Body})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "claim": claim})
}

// GetClaim returns a single claim with the caller's vote and follow state
func (h *ContentHandler) GetClaim(c *gin.Context) {
	id, err := parseID(c, models.TargetClaim)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()

	claim, err := h.content.GetClaim(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var (
		userVote    models.VoteDirection
		isFollowing bool
	)
	if caller, ok := middleware.CurrentIdentity(c); ok {
		if userVote, err = h.votes.UserVote(ctx, models.TargetClaim, id, caller.UserID); err != nil {
			h.fail(c, err)
			return
		}
		if isFollowing, err = h.follows.IsFollowing(ctx, models.TargetClaim, id, caller.UserID); err != nil {
			h.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"claim":       claim,
		"userVote":    voteValue(userVote),
		"isFollowing": isFollowing,
	})
}

// CreateEvidence attaches pending evidence to a claim
func (h *ContentHandler) CreateEvidence(c *gin.Context) {
	claimID, err := parseID(c, models.TargetClaim)
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
		Position string `json:"position" binding:"required"`
		Title    string `json:"title" binding:"required"`
		URL      string `json:"url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.Validation("position and title are required"))
		return
	}

	ev, err := h.content.CreateEvidence(c.Request.Context(), actor(caller), content.NewEvidence{
		ClaimID:  claimID,
		Position: models.Position(input.Position),
		Title:    input.Title,
		URL:      input.URL,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "evidence": ev})
}

// CreatePerspective attaches an approved perspective to a claim
func (h *ContentHandler) CreatePerspective(c *gin.Context) {
	claimID, err := parseID(c, models.TargetClaim)
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
		Position string `json:"position" binding:"required"`
		Body     string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.Validation("position and body are required"))
		return
	}

	p, err := h.content.CreatePerspective(c.Request.Context(), actor(caller), content.NewPerspective{
		ClaimID:  claimID,
		Position: models.Position(input.Position),
		Body:     input.Body,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "perspective": p})
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// SetEvidenceStatus changes an evidence approval status (moderators only)
func (h *ContentHandler) SetEvidenceStatus(c *gin.Context) {
	id, err := parseID(c, models.TargetEvidence)
	if err != nil {
		h.fail(c, err)
		return
	}
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.Validation("status is required"))
		return
	}

	ev, err := h.content.SetEvidenceStatus(c.Request.Context(), actor(caller), id, models.Status(input.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "evidence": ev})
}

// SetPerspectiveStatus changes a perspective approval status (moderators only)
func (h *ContentHandler) SetPerspectiveStatus(c *gin.Context) {
	id, err := parseID(c, models.TargetPerspective)
	if err != nil {
		h.fail(c, err)
		return
	}
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.Validation("status is required"))
		return
	}

	p, err := h.content.SetPerspectiveStatus(c.Request.Context(), actor(caller), id, models.Status(input.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "perspective": p})
}

// DeleteEvidence deletes evidence (PROTECTED - author or moderator)
func (h *ContentHandler) DeleteEvidence(c *gin.Context) {
	id, err := parseID(c, models.TargetEvidence)
	if err != nil {
		h.fail(c, err)
		return
	}
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.content.DeleteEvidence(c.Request.Context(), actor(caller), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Evidence deleted successfully"})
}

// CreateReply returns the reply handler for evidence or perspectives.
func (h *ContentHandler) CreateReply(parent models.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := parseID(c, parent)
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
			Body string `json:"body" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			h.fail(c, apperr.Validation("Body is required"))
			return
		}

		reply, err := h.content.CreateReply(c.Request.Context(), actor(caller), content.NewReply{
			ParentType: parent,
			ParentID:   parentID,
			Body:       input.Body,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "reply": reply})
	}
}
