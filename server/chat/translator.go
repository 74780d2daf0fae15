package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adminparrot/adminparrot/plugin/llm"
)

// text2SQLPrompt embeds the operational schema for the model. It documents
// the soft-delete marker on message and the bot flag on users so generated
// queries exclude deleted rows and synthetic accounts.
const text2SQLPrompt = `Ты эксперт по PostgreSQL.
Переведи вопрос пользователя в SQL запрос.

База данных PostgreSQL с таблицами:

**users:**
- user_id (BIGINT) - ID пользователя Telegram
- username (VARCHAR) - username пользователя
- first_name (VARCHAR) - имя пользователя
- last_name (VARCHAR) - фамилия пользователя
- language_code (VARCHAR) - код языка (ru, en, de, etc.)
- is_premium (BOOLEAN) - Premium статус
- is_bot (BOOLEAN) - является ли ботом
- created_at (TIMESTAMP) - дата регистрации

**message:**
- id (SERIAL) - ID сообщения
- user_id (BIGINT) - ID пользователя
- chat_id (BIGINT) - ID чата
- role (VARCHAR) - роль (user, assistant, system)
- content (TEXT) - текст сообщения
- character_count (INT) - количество символов
- created_at (TIMESTAMP) - дата создания
- deleted_at (TIMESTAMP) - дата удаления (NULL если не удалено)

Важно:
- Используй ТОЛЬКО SELECT запросы
- Учитывай поле deleted_at (WHERE deleted_at IS NULL для неудаленных)
- Исключай ботов (WHERE is_bot = FALSE) при запросах по users
- Используй агрегации и GROUP BY где уместно
- Форматируй даты с помощью to_char() для читабельности

Верни ТОЛЬКО SQL запрос, без объяснений, без markdown кода.`

// Translator turns a natural-language question into a candidate SQL string.
// It does not validate the result; that is the gatekeeper's job.
type Translator struct {
	llm llm.CompletionService
}

func NewTranslator(completion llm.CompletionService) *Translator {
	return &Translator{llm: completion}
}

// GenerateSQL asks the model for a single read-only statement answering the
// question and strips any formatting artifacts from the completion.
func (t *Translator) GenerateSQL(ctx context.Context, question string) (string, error) {
	messages := []llm.Message{
		llm.UserMessage("Вопрос: " + question),
	}

	completion, err := t.llm.Complete(ctx, messages, text2SQLPrompt)
	if err != nil {
		return "", err
	}

	query := cleanSQLCompletion(completion)
	slog.Info("generated SQL", "query", query)
	return query, nil
}

// cleanSQLCompletion strips markdown code fences the model sometimes emits
// despite the prompt: a leading ```sql fence, a bare leading ``` fence, and
// a trailing ``` fence.
func cleanSQLCompletion(completion string) string {
	query := strings.TrimSpace(completion)
	if strings.HasPrefix(query, "```sql") {
		query = query[len("```sql"):]
	} else if strings.HasPrefix(query, "```") {
		query = query[len("```"):]
	}
	if strings.HasSuffix(query, "```") {
		query = query[:len(query)-len("```")]
	}
	return strings.TrimSpace(query)
}
