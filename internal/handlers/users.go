package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/middleware"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type UserHandler struct {
	responder
	users   UserStore
	follows *follows.Service
}

// GetUserProfile returns a user's public profile
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	id, err := parseID(c, models.TargetUser)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.GetUser(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Check if current user follows this user
	isFollowing := false
	if caller, ok := middleware.CurrentIdentity(c); ok {
		if isFollowing, err = h.follows.IsFollowing(ctx, models.TargetUser, id, caller.UserID); err != nil {
			h.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"bio":         user.Bio,
			"avatar":      user.Avatar,
			"followCount": user.FollowCount,
			"createdAt":   user.CreatedAt,
		},
		"isFollowing": isFollowing,
	})
}

// GetFollowers returns who follows a target
func (h *UserHandler) GetFollowers(t models.TargetType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, t)
		if err != nil {
			h.fail(c, err)
			return
		}
		followers, err := h.follows.Followers(c.Request.Context(), t, id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "followers": followers})
	}
}

// GetFollowing returns users that a user is following
func (h *UserHandler) GetFollowing(c *gin.Context) {
	id, err := parseID(c, models.TargetUser)
	if err != nil {
		h.fail(c, err)
		return
	}
	following, err := h.follows.Following(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "following": following})
}
