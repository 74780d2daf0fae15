package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adminparrot/adminparrot/server/chat"
)

type sendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type sendMessageResponse struct {
	Response  string  `json:"response"`
	SessionID string  `json:"session_id"`
	SQLQuery  *string `json:"sql_query"`
}

type historyMessage struct {
	Role     string  `json:"role"`
	Content  string  `json:"content"`
	SQLQuery *string `json:"sql_query"`
}

type historyResponse struct {
	Messages  []historyMessage `json:"messages"`
	SessionID string           `json:"session_id"`
}

func (s *APIV1Service) sendMessage(c echo.Context) error {
	req := &sendMessageRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Message == "" || req.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message and session_id are required")
	}

	answer, sqlQuery, err := s.ChatService.SendMessage(c.Request().Context(), req.SessionID, req.Message, chat.ParseMode(req.Mode))
	if err != nil {
		slog.Error("failed to process chat message", "session", req.SessionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process message")
	}

	return c.JSON(http.StatusOK, &sendMessageResponse{
		Response:  answer,
		SessionID: req.SessionID,
		SQLQuery:  sqlQuery,
	})
}

func (s *APIV1Service) getHistory(c echo.Context) error {
	sessionID := c.Param("sessionId")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = parsed
	}

	turns, err := s.ChatService.GetHistory(c.Request().Context(), sessionID, limit)
	if err != nil {
		slog.Error("failed to fetch history", "session", sessionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch history")
	}

	messages := make([]historyMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, historyMessage{
			Role:     string(turn.Role),
			Content:  turn.Content,
			SQLQuery: turn.SQLQuery,
		})
	}

	return c.JSON(http.StatusOK, &historyResponse{
		Messages:  messages,
		SessionID: sessionID,
	})
}

func (s *APIV1Service) clearHistory(c echo.Context) error {
	sessionID := c.Param("sessionId")

	if err := s.ChatService.ClearHistory(c.Request().Context(), sessionID); err != nil {
		slog.Error("failed to clear history", "session", sessionID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to clear history")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "history cleared for session " + sessionID,
	})
}
