package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adminparrot/adminparrot/plugin/llm"
)

// maxRenderedRows caps how much of a result set is handed to the model.
const maxRenderedRows = 50

const summarizePrompt = `Ты AI-ассистент для администратора.
Пользователь задал вопрос о статистике бота, был выполнен SQL запрос.
Сформируй понятный ответ на основе результатов.

Требования:
- Ответ должен быть коротким и по делу
- Используй форматирование (списки, выделения)
- Если результатов нет, скажи об этом
- Добавь краткий вывод или инсайт если уместно`

// Summarizer turns a raw query result into a human-readable answer.
type Summarizer struct {
	llm llm.CompletionService
}

func NewSummarizer(completion llm.CompletionService) *Summarizer {
	return &Summarizer{llm: completion}
}

// Summarize renders the rows into compact text and asks the model for a
// short, formatted answer. The completion is returned verbatim.
func (s *Summarizer) Summarize(ctx context.Context, question, query string, rows []map[string]any) (string, error) {
	content := fmt.Sprintf(`Вопрос: %s

SQL запрос:
%s

Результаты:
%s

Сформируй ответ для администратора.`, question, query, renderRows(rows))

	return s.llm.Complete(ctx, []llm.Message{llm.UserMessage(content)}, summarizePrompt)
}

// renderRows renders a query result as text: the empty marker for zero
// rows, the bare value for a single 1x1 result, otherwise one
// "column: value" line per row, capped at maxRenderedRows.
func renderRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return "Пусто (0 строк)"
	}

	if len(rows) == 1 && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			return fmt.Sprintf("%v", v)
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for _, row := range rows[:min(len(rows), maxRenderedRows)] {
		// Map iteration order is random; sort column names so the same
		// result always renders the same way.
		names := make([]string, 0, len(row))
		for name := range row {
			names = append(names, name)
		}
		sort.Strings(names)

		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, fmt.Sprintf("%s: %v", name, row[name]))
		}
		lines = append(lines, strings.Join(pairs, ", "))
	}

	if len(rows) > maxRenderedRows {
		lines = append(lines, fmt.Sprintf("... (еще %d строк)", len(rows)-maxRenderedRows))
	}
	return strings.Join(lines, "\n")
}
