package chat

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/plugin/llm"
	"github.com/adminparrot/adminparrot/store"
)

// mockCompletion is a function-backed CompletionService.
type mockCompletion struct {
	complete func(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error)
}

func (m *mockCompletion) Complete(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	return m.complete(ctx, messages, systemPrompt)
}

// fakeDriver is an in-memory store.Driver for orchestrator tests.
type fakeDriver struct {
	mu     sync.Mutex
	nextID int32
	turns  []*store.ChatMessage

	queryRows []map[string]any
	queryErr  error
	executed  []string

	snapshot *store.DashboardSnapshot
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{}
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }
func (d *fakeDriver) Close() error   { return nil }

func (d *fakeDriver) IsInitialized(_ context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) CreateChatMessage(_ context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	create.ID = d.nextID
	if create.CreatedTs == 0 {
		// Seconds collide within a test run; the ID breaks ties like the
		// real drivers' ORDER BY created_ts, id.
		create.CreatedTs = int64(d.nextID)
	}
	copied := *create
	d.turns = append(d.turns, &copied)
	return create, nil
}

func (d *fakeDriver) ListChatMessages(_ context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	visible := make([]*store.ChatMessage, 0)
	for _, turn := range d.turns {
		if turn.DeletedTs != nil {
			continue
		}
		if find.SessionID != nil && turn.SessionID != *find.SessionID {
			continue
		}
		visible = append(visible, turn)
	}
	sort.Slice(visible, func(i, j int) bool {
		if visible[i].CreatedTs != visible[j].CreatedTs {
			return visible[i].CreatedTs < visible[j].CreatedTs
		}
		return visible[i].ID < visible[j].ID
	})
	if find.Limit != nil && *find.Limit > 0 && len(visible) > *find.Limit {
		visible = visible[len(visible)-*find.Limit:]
	}
	return visible, nil
}

func (d *fakeDriver) SoftDeleteChatMessages(_ context.Context, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ts := int64(1)
	for _, turn := range d.turns {
		if turn.SessionID == sessionID && turn.DeletedTs == nil {
			turn.DeletedTs = &ts
		}
	}
	return nil
}

func (d *fakeDriver) RunReadOnlyQuery(_ context.Context, query string) ([]map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executed = append(d.executed, query)
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return d.queryRows, nil
}

func (d *fakeDriver) DashboardSnapshot(_ context.Context) (*store.DashboardSnapshot, error) {
	return d.snapshot, nil
}

func newTestService(driver *fakeDriver, completion llm.CompletionService) *Service {
	st := store.New(driver, &profile.Profile{Mode: "dev"})
	return NewService(st, completion, 10)
}

func TestSendMessage_NormalMode(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()

	var gotSystemPrompt string
	var gotMessages []llm.Message
	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, messages []llm.Message, systemPrompt string) (string, error) {
			gotSystemPrompt = systemPrompt
			gotMessages = messages
			return "Могу помочь с настройкой бота.", nil
		},
	})

	answer, sqlQuery, err := service.SendMessage(ctx, "session-1", "Как настроить бота?", ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, "Могу помочь с настройкой бота.", answer)
	assert.Nil(t, sqlQuery)
	assert.Equal(t, assistantPrompt, gotSystemPrompt)

	// Context includes the just-persisted user turn.
	require.NotEmpty(t, gotMessages)
	assert.Equal(t, "Как настроить бота?", gotMessages[len(gotMessages)-1].Content)

	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.RoleUser, history[0].Role)
	assert.Equal(t, store.RoleAssistant, history[1].Role)
	assert.Nil(t, history[1].SQLQuery)
}

func TestSendMessage_AdminModeSuccess(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	driver.queryRows = []map[string]any{{"count": 42}}

	var summarizeInput string
	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, messages []llm.Message, systemPrompt string) (string, error) {
			switch systemPrompt {
			case text2SQLPrompt:
				return "SELECT COUNT(*) FROM users", nil
			case summarizePrompt:
				summarizeInput = messages[0].Content
				return "Всего 42 пользователя.", nil
			default:
				t.Fatalf("unexpected system prompt: %q", systemPrompt)
				return "", nil
			}
		},
	})

	answer, sqlQuery, err := service.SendMessage(ctx, "session-1", "Сколько пользователей?", ModeAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Всего 42 пользователя.", answer)
	require.NotNil(t, sqlQuery)
	assert.Equal(t, "SELECT COUNT(*) FROM users", *sqlQuery)

	// The executed query reached the driver and its result reached the summarizer.
	require.Len(t, driver.executed, 1)
	assert.Equal(t, "SELECT COUNT(*) FROM users", driver.executed[0])
	assert.Contains(t, summarizeInput, "42")

	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].SQLQuery)
	assert.Equal(t, "SELECT COUNT(*) FROM users", *history[1].SQLQuery)
}

func TestSendMessage_AdminModeRejectedQuery(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()

	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
			return "DELETE FROM users", nil
		},
	})

	answer, sqlQuery, err := service.SendMessage(ctx, "session-1", "Удали всех", ModeAdmin)
	require.NoError(t, err)
	assert.Contains(t, answer, "не разрешён")
	require.NotNil(t, sqlQuery)
	assert.Equal(t, "DELETE FROM users", *sqlQuery)

	// Rejection short-circuits before execution.
	assert.Empty(t, driver.executed)

	// The rejected query is still persisted for audit.
	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].SQLQuery)
	assert.Equal(t, "DELETE FROM users", *history[1].SQLQuery)
}

func TestSendMessage_AdminModeExecutionFailure(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	driver.queryErr = errors.New(`column "nonexistent" does not exist`)

	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
			return "SELECT nonexistent FROM users", nil
		},
	})

	answer, sqlQuery, err := service.SendMessage(ctx, "session-1", "Что-то странное", ModeAdmin)
	require.NoError(t, err)
	assert.Contains(t, answer, "Ошибка выполнения SQL запроса")
	assert.Contains(t, answer, "nonexistent")
	require.NotNil(t, sqlQuery)
	assert.Equal(t, "SELECT nonexistent FROM users", *sqlQuery)

	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].SQLQuery)
}

func TestSendMessage_NormalModeCompletionFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"timeout", llm.ErrTimeout, "Превышено время ожидания"},
		{"api failure", llm.ErrAPIFailure, "Ошибка API"},
		{"empty", llm.ErrEmpty, "не смог сгенерировать"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := newFakeDriver()
			service := newTestService(driver, &mockCompletion{
				complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
					return "", tt.err
				},
			})

			answer, sqlQuery, err := service.SendMessage(context.Background(), "session-1", "привет", ModeNormal)
			require.NoError(t, err)
			assert.Contains(t, answer, tt.contains)
			assert.Nil(t, sqlQuery)

			// The failure answer is persisted like any assistant turn.
			history, err := service.GetHistory(context.Background(), "session-1", 0)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, answer, history[1].Content)
		})
	}
}

func TestSendMessage_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
			return "ok", nil
		},
	})

	for i := 0; i < 3; i++ {
		_, _, err := service.SendMessage(ctx, "session-a", "a?", ModeNormal)
		require.NoError(t, err)
		_, _, err = service.SendMessage(ctx, "session-b", "b?", ModeNormal)
		require.NoError(t, err)
	}

	historyA, err := service.GetHistory(ctx, "session-a", 0)
	require.NoError(t, err)
	require.Len(t, historyA, 6)
	for _, turn := range historyA {
		assert.Equal(t, "session-a", turn.SessionID)
	}
}

func TestGetHistory_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	st := store.New(driver, &profile.Profile{Mode: "dev"})
	service := NewService(st, &mockCompletion{}, 10)

	contents := []string{"first", "second", "third", "fourth"}
	for _, content := range contents {
		_, err := st.CreateChatMessage(ctx, &store.ChatMessage{
			SessionID: "session-1",
			Role:      store.RoleUser,
			Content:   content,
		})
		require.NoError(t, err)
	}

	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, content := range contents {
		assert.Equal(t, content, history[i].Content)
	}

	// Limit keeps the most recent turns, still chronological.
	history, err = service.GetHistory(ctx, "session-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "third", history[0].Content)
	assert.Equal(t, "fourth", history[1].Content)
}

func TestClearHistory_SoftDeleteWatermark(t *testing.T) {
	ctx := context.Background()
	driver := newFakeDriver()
	service := newTestService(driver, &mockCompletion{
		complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
			return "ok", nil
		},
	})

	_, _, err := service.SendMessage(ctx, "session-1", "before clear", ModeNormal)
	require.NoError(t, err)

	require.NoError(t, service.ClearHistory(ctx, "session-1"))

	history, err := service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	// Clearing again is a no-op.
	require.NoError(t, service.ClearHistory(ctx, "session-1"))

	// Turns added after the clear are visible; older ones stay hidden.
	_, _, err = service.SendMessage(ctx, "session-1", "after clear", ModeNormal)
	require.NoError(t, err)

	history, err = service.GetHistory(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "after clear", history[0].Content)
}

func TestSendMessage_UnknownModeFallsBackToNormal(t *testing.T) {
	assert.Equal(t, ModeNormal, ParseMode(""))
	assert.Equal(t, ModeNormal, ParseMode("something"))
	assert.Equal(t, ModeAdmin, ParseMode("admin"))
}
