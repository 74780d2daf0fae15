// Package v1 exposes the JSON API consumed by the admin dashboard front end.
package v1

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/server/chat"
	"github.com/adminparrot/adminparrot/server/stats"
	"github.com/adminparrot/adminparrot/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	ChatService *chat.Service
	Collector   stats.Collector
}

func NewAPIV1Service(profile *profile.Profile, st *store.Store, chatService *chat.Service, collector stats.Collector) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       st,
		ChatService: chatService,
		Collector:   collector,
	}
}

// RegisterRoutes registers all v1 routes on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	// The dashboard front end is served from a separate origin.
	e.Use(middleware.CORS())

	e.GET("/healthz", s.healthCheck)

	chatGroup := e.Group("/api/chat")
	chatGroup.POST("/message", s.sendMessage)
	chatGroup.GET("/history/:sessionId", s.getHistory)
	chatGroup.DELETE("/history/:sessionId", s.clearHistory)

	e.GET("/api/stats/dashboard", s.getDashboardStats)
}

func (s *APIV1Service) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Profile.Version,
	})
}
