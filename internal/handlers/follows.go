package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type FollowHandler struct {
	responder
	follows *follows.Service
}

// Toggle returns the POST /{targets}/:id/follow handler for one target type.
func (h *FollowHandler) Toggle(t models.TargetType) gin.HandlerFunc {
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

		res, err := h.follows.Toggle(c.Request.Context(), follows.ToggleInput{
			TargetType:   t,
			TargetID:     id,
			UserID:       caller.UserID,
			FollowerName: caller.Username,
		})
		if err != nil {
			h.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"isFollowing": res.IsFollowing,
			labels[t]: gin.H{
				"id":          res.TargetID,
				"followCount": res.FollowCount,
			},
		})
	}
}
