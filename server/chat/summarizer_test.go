package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminparrot/adminparrot/plugin/llm"
)

func TestRenderRows(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, "Пусто (0 строк)", renderRows(nil))
		assert.Equal(t, "Пусто (0 строк)", renderRows([]map[string]any{}))
	})

	t.Run("single scalar", func(t *testing.T) {
		rows := []map[string]any{{"count": 5}}
		assert.Equal(t, "5", renderRows(rows))
	})

	t.Run("multiple rows", func(t *testing.T) {
		rows := []map[string]any{
			{"a": 1, "b": 2},
			{"a": 1, "b": 2},
			{"a": 1, "b": 2},
		}
		rendered := renderRows(rows)
		lines := strings.Split(rendered, "\n")
		require.Len(t, lines, 3)
		for _, line := range lines {
			assert.Equal(t, "a: 1, b: 2", line)
		}
	})

	t.Run("truncates past 50 rows", func(t *testing.T) {
		rows := make([]map[string]any, 60)
		for i := range rows {
			rows[i] = map[string]any{"n": i, "v": "x"}
		}
		rendered := renderRows(rows)
		lines := strings.Split(rendered, "\n")
		require.Len(t, lines, 51)
		assert.Equal(t, "... (еще 10 строк)", lines[50])
	})
}

func TestSummarize(t *testing.T) {
	var gotContent string
	var gotSystemPrompt string
	summarizer := NewSummarizer(&mockCompletion{
		complete: func(_ context.Context, messages []llm.Message, systemPrompt string) (string, error) {
			require.Len(t, messages, 1)
			gotContent = messages[0].Content
			gotSystemPrompt = systemPrompt
			return "В базе 42 пользователя.", nil
		},
	})

	rows := []map[string]any{{"count": 42}}
	answer, err := summarizer.Summarize(context.Background(), "Сколько пользователей?", "SELECT COUNT(*) FROM users", rows)
	require.NoError(t, err)
	assert.Equal(t, "В базе 42 пользователя.", answer)

	assert.Equal(t, summarizePrompt, gotSystemPrompt)
	assert.Contains(t, gotContent, "Сколько пользователей?")
	assert.Contains(t, gotContent, "SELECT COUNT(*) FROM users")
	assert.Contains(t, gotContent, "42")
}

func TestSummarize_PropagatesCompletionError(t *testing.T) {
	summarizer := NewSummarizer(&mockCompletion{
		complete: func(_ context.Context, _ []llm.Message, _ string) (string, error) {
			return "", fmt.Errorf("%w: upstream 500", llm.ErrAPIFailure)
		},
	})

	_, err := summarizer.Summarize(context.Background(), "q", "SELECT 1", nil)
	require.ErrorIs(t, err, llm.ErrAPIFailure)
}
