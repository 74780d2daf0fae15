// Package server wires the HTTP surface over the chat and stats services.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/plugin/llm"
	"github.com/adminparrot/adminparrot/server/chat"
	apiv1 "github.com/adminparrot/adminparrot/server/router/api/v1"
	"github.com/adminparrot/adminparrot/server/stats"
	"github.com/adminparrot/adminparrot/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

// NewServer assembles the chat service, the stats collector and the HTTP
// routes on top of an already-migrated store.
func NewServer(profile *profile.Profile, st *store.Store, completion llm.CompletionService) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	chatService := chat.NewService(st, completion, profile.HistoryContextLimit)

	var collector stats.Collector
	if profile.MockStats {
		collector = stats.NewMockCollector()
	} else {
		collector = stats.NewRealCollector(st)
	}

	apiService := apiv1.NewAPIV1Service(profile, st, chatService, collector)
	apiService.RegisterRoutes(e)

	return &Server{
		Profile:    profile,
		Store:      st,
		echoServer: e,
	}, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server starting", "address", address, "version", s.Profile.Version)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}
