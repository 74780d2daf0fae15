package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/adminparrot/adminparrot/store"
)

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	fields := []string{"session_id", "role", "content", "sql_query", "created_ts"}
	args := []any{create.SessionID, create.Role, create.Content, create.SQLQuery, create.CreatedTs}

	stmt := `INSERT INTO chat_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create chat_message: %w", err)
	}

	return create, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"deleted_ts IS NULL"}, []any{}

	if find.SessionID != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *find.SessionID)
	}

	// Most recent turns first so the limit trims the oldest; reversed below
	// to hand back chronological order.
	query := `SELECT id, session_id, role, content, sql_query, created_ts, deleted_ts
		FROM chat_message
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil && *find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat_messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatMessage, 0)
	for rows.Next() {
		m := &store.ChatMessage{}
		var sqlQuery sql.NullString
		var deletedTs sql.NullInt64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &sqlQuery, &m.CreatedTs, &deletedTs); err != nil {
			return nil, fmt.Errorf("failed to scan chat_message: %w", err)
		}
		if sqlQuery.Valid {
			m.SQLQuery = &sqlQuery.String
		}
		if deletedTs.Valid {
			m.DeletedTs = &deletedTs.Int64
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat_messages: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (d *DB) SoftDeleteChatMessages(ctx context.Context, sessionID string) error {
	stmt := `UPDATE chat_message SET deleted_ts = ` + placeholder(1) + `
		WHERE session_id = ` + placeholder(2) + ` AND deleted_ts IS NULL`
	if _, err := d.db.ExecContext(ctx, stmt, time.Now().Unix(), sessionID); err != nil {
		return fmt.Errorf("failed to soft delete chat_messages: %w", err)
	}
	return nil
}
