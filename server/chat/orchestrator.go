// Package chat implements the dual-mode admin chat: free-form conversation
// and natural-language-to-SQL over the operational database.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adminparrot/adminparrot/plugin/llm"
	"github.com/adminparrot/adminparrot/store"
)

// Mode selects how an inbound message is handled.
type Mode string

const (
	// ModeNormal answers with a plain LLM completion over the session context.
	ModeNormal Mode = "normal"
	// ModeAdmin translates the question to SQL, executes it read-only and
	// summarizes the result.
	ModeAdmin Mode = "admin"
)

// ParseMode maps a transport-supplied string onto the closed mode set.
// Unknown values fall back to normal mode.
func ParseMode(s string) Mode {
	if s == string(ModeAdmin) {
		return ModeAdmin
	}
	return ModeNormal
}

// assistantPrompt is the persona for normal-mode conversation.
const assistantPrompt = "Ты AI-ассистент для администратора Telegram бота. " +
	"Помогай администратору с вопросами по управлению ботом, " +
	"объясняй функциональность и давай полезные советы."

// defaultHistoryLimit bounds the history endpoint when no limit is given.
const defaultHistoryLimit = 50

// QueryExecutionError is returned when the database rejects or errors on a
// statement that passed the gatekeeper.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// Service orchestrates the chat pipeline. Each SendMessage call runs its
// stages strictly sequentially; calls for different sessions run in
// parallel and calls within one session are deliberately not serialized.
type Service struct {
	store        *store.Store
	llm          llm.CompletionService
	translator   *Translator
	summarizer   *Summarizer
	contextLimit int
}

// NewService creates the chat orchestrator. contextLimit is the number of
// recent turns handed to the model as conversation context.
func NewService(st *store.Store, completion llm.CompletionService, contextLimit int) *Service {
	if contextLimit <= 0 {
		contextLimit = 10
	}
	return &Service{
		store:        st,
		llm:          completion,
		translator:   NewTranslator(completion),
		summarizer:   NewSummarizer(completion),
		contextLimit: contextLimit,
	}
}

// SendMessage persists the inbound turn, routes it by mode and persists the
// outbound turn. The returned sqlQuery is nil in normal mode. A non-nil
// error means history persistence failed; completion and query failures are
// folded into the answer text instead so the conversation can continue.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string, mode Mode) (string, *string, error) {
	slog.Info("processing chat message", "session", sessionID, "mode", mode)

	if _, err := s.store.CreateChatMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   message,
	}); err != nil {
		return "", nil, fmt.Errorf("failed to persist user turn: %w", err)
	}

	history, err := s.store.ListChatMessages(ctx, &store.FindChatMessage{
		SessionID: &sessionID,
		Limit:     &s.contextLimit,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch context: %w", err)
	}

	var answer string
	var sqlQuery *string
	switch mode {
	case ModeAdmin:
		answer, sqlQuery = s.handleAdminMode(ctx, message)
	default:
		answer = s.handleNormalMode(ctx, history)
	}

	if _, err := s.store.CreateChatMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		Role:      store.RoleAssistant,
		Content:   answer,
		SQLQuery:  sqlQuery,
	}); err != nil {
		return "", nil, fmt.Errorf("failed to persist assistant turn: %w", err)
	}

	return answer, sqlQuery, nil
}

// handleNormalMode runs a single completion over the session context.
// Completion failures become the answer text, not an error.
func (s *Service) handleNormalMode(ctx context.Context, history []*store.ChatMessage) string {
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	answer, err := s.llm.Complete(ctx, messages, assistantPrompt)
	if err != nil {
		slog.Error("normal mode completion failed", "error", err)
		return humanizeCompletionError(err)
	}
	return answer
}

// handleAdminMode runs the translate -> gate -> execute -> summarize
// pipeline. Every branch that got as far as a generated query returns that
// query alongside the answer, including rejections and failures, so
// attempted unsafe or broken queries stay auditable in history.
func (s *Service) handleAdminMode(ctx context.Context, question string) (string, *string) {
	query, err := s.translator.GenerateSQL(ctx, question)
	if err != nil {
		slog.Error("SQL generation failed", "error", err)
		return humanizeCompletionError(err), nil
	}

	if err := ValidateReadOnly(query); err != nil {
		var rejected *RejectedQueryError
		if errors.As(err, &rejected) {
			slog.Warn("rejected non-SELECT query", "query", query)
			return "Запрос этого типа не разрешён: допускаются только SELECT запросы.", &query
		}
		return humanizeCompletionError(err), &query
	}

	rows, err := s.store.RunReadOnlyQuery(ctx, query)
	if err != nil {
		execErr := &QueryExecutionError{Query: query, Err: err}
		slog.Error("SQL execution failed", "query", query, "error", err)
		return fmt.Sprintf("Ошибка выполнения SQL запроса: %v", execErr.Err), &query
	}
	slog.Info("SQL executed", "rows", len(rows))

	answer, err := s.summarizer.Summarize(ctx, question, query, rows)
	if err != nil {
		slog.Error("result summarization failed", "error", err)
		return humanizeCompletionError(err), &query
	}
	return answer, &query
}

// GetHistory returns the most recent visible turns of a session in
// chronological order. An unknown session yields an empty slice.
func (s *Service) GetHistory(ctx context.Context, sessionID string, limit int) ([]*store.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.store.ListChatMessages(ctx, &store.FindChatMessage{
		SessionID: &sessionID,
		Limit:     &limit,
	})
}

// ClearHistory soft-deletes all visible turns of a session. Idempotent.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	if err := s.store.SoftDeleteChatMessages(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	slog.Info("history cleared", "session", sessionID)
	return nil
}

// humanizeCompletionError converts a normalized completion failure into the
// user-visible answer text. Surfacing the failure as an answer keeps the
// conversation alive; nothing here is retried.
func humanizeCompletionError(err error) string {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return "⏱️ Превышено время ожидания ответа. Попробуйте снова."
	case errors.Is(err, llm.ErrEmpty):
		return "Извините, я не смог сгенерировать ответ. Попробуйте еще раз."
	case errors.Is(err, llm.ErrAPIFailure):
		return fmt.Sprintf("❌ Ошибка API: %v\nПожалуйста, попробуйте позже или проверьте конфигурацию.", err)
	default:
		return fmt.Sprintf("❌ Произошла непредвиденная ошибка: %v\nПожалуйста, попробуйте позже.", err)
	}
}
