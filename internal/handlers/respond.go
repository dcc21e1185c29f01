package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/middleware"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

type responder struct {
	logger *slog.Logger
}

// fail writes the error envelope. Internal details are logged, never sent.
func (r responder) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		r.logger.ErrorContext(c.Request.Context(), "request error", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": apperr.Message(err)})
}

var labels = map[models.TargetType]string{
	models.TargetClaim:       "claim",
	models.TargetEvidence:    "evidence",
	models.TargetPerspective: "perspective",
	models.TargetReply:       "reply",
	models.TargetUser:        "user",
}

func parseID(c *gin.Context, t models.TargetType) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + labels[t] + " ID")
	}
	return uint(id), nil
}

func identity(c *gin.Context) (middleware.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return middleware.Identity{}, apperr.Auth("User not authenticated")
	}
	return id, nil
}

// voteValue renders a direction, with no vote as JSON null.
func voteValue(d models.VoteDirection) interface{} {
	if d == "" {
		return nil
	}
	return d
}
