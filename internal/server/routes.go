package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emilythestrangee/debate-platform/backend/internal/middleware"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

var plurals = map[models.TargetType]string{
	models.TargetClaim:       "claims",
	models.TargetEvidence:    "evidence",
	models.TargetPerspective: "perspectives",
	models.TargetReply:       "replies",
	models.TargetUser:        "users",
}

var targetTypes = []models.TargetType{
	models.TargetClaim,
	models.TargetEvidence,
	models.TargetPerspective,
	models.TargetReply,
	models.TargetUser,
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.logger))

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	h := s.handler
	api := r.Group("/api")
	{
		// Public reads; a valid token personalises the response
		public := api.Group("")
		public.Use(s.auth.OptionalAuth())
		{
			public.GET("/claims/:id", h.Content.GetClaim)
			public.GET("/users/:id", h.User.GetUserProfile)
			public.GET("/users/:id/following", h.User.GetFollowing)

			for _, t := range targetTypes {
				if t.Votable() {
					public.GET("/"+plurals[t]+"/:id/voters", h.Vote.Voters(t))
				}
				if t.Followable() {
					public.GET("/"+plurals[t]+"/:id/followers", h.User.GetFollowers(t))
				}
			}
		}

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(s.auth.RequireAuth())
		{
			protected.POST("/claims", h.Content.CreateClaim)
			protected.POST("/claims/:id/evidence", h.Content.CreateEvidence)
			protected.POST("/claims/:id/perspectives", h.Content.CreatePerspective)
			protected.PATCH("/evidence/:id/status", h.Content.SetEvidenceStatus)
			protected.PATCH("/perspectives/:id/status", h.Content.SetPerspectiveStatus)
			protected.DELETE("/evidence/:id", h.Content.DeleteEvidence)
			protected.POST("/evidence/:id/replies", h.Content.CreateReply(models.TargetEvidence))
			protected.POST("/perspectives/:id/replies", h.Content.CreateReply(models.TargetPerspective))

			protected.GET("/notifications", h.Notification.List)
			protected.GET("/notifications/recent", h.Notification.Recent)

			for _, t := range targetTypes {
				if t.Votable() {
					protected.POST("/"+plurals[t]+"/:id/vote", s.limiter.Middleware(), h.Vote.Vote(t))
				}
				if t.Followable() {
					protected.POST("/"+plurals[t]+"/:id/follow", h.Follow.Toggle(t))
				}
			}
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	stats := s.health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "database": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": stats})
}
