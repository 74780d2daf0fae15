package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adminparrot/adminparrot/store"
)

// parseSQLiteTime parses the textual timestamp formats SQLite produces.
func parseSQLiteTime(s string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DashboardSnapshot aggregates usage statistics over the users/message
// tables. Mirrors the PostgreSQL implementation with SQLite date functions.
func (d *DB) DashboardSnapshot(ctx context.Context) (*store.DashboardSnapshot, error) {
	snapshot := &store.DashboardSnapshot{
		UsersByLanguage: make(map[string]int64),
	}

	scalarQueries := []struct {
		dest  *int64
		query string
	}{
		{&snapshot.TotalUsers, `SELECT COUNT(*) FROM users WHERE is_bot = 0`},
		{&snapshot.PremiumUsers, `SELECT COUNT(*) FROM users WHERE is_bot = 0 AND is_premium = 1`},
		{&snapshot.ActiveUsers7d, `SELECT COUNT(DISTINCT m.user_id) FROM message m
			JOIN users u ON m.user_id = u.user_id
			WHERE m.created_at >= datetime('now', '-7 days')
			AND m.deleted_at IS NULL AND u.is_bot = 0 AND m.role = 'user'`},
		{&snapshot.ActiveUsers30d, `SELECT COUNT(DISTINCT m.user_id) FROM message m
			JOIN users u ON m.user_id = u.user_id
			WHERE m.created_at >= datetime('now', '-30 days')
			AND m.deleted_at IS NULL AND u.is_bot = 0 AND m.role = 'user'`},
		{&snapshot.TotalMessages, `SELECT COUNT(*) FROM message WHERE deleted_at IS NULL`},
		{&snapshot.Messages7d, `SELECT COUNT(*) FROM message
			WHERE deleted_at IS NULL AND created_at >= datetime('now', '-7 days')`},
		{&snapshot.Messages30d, `SELECT COUNT(*) FROM message
			WHERE deleted_at IS NULL AND created_at >= datetime('now', '-30 days')`},
		{&snapshot.UserMessages, `SELECT COUNT(*) FROM message WHERE deleted_at IS NULL AND role = 'user'`},
		{&snapshot.AssistantMessages, `SELECT COUNT(*) FROM message WHERE deleted_at IS NULL AND role = 'assistant'`},
	}
	for _, q := range scalarQueries {
		if err := d.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("dashboard scalar query failed: %w", err)
		}
	}

	var avgLength sql.NullFloat64
	if err := d.db.QueryRowContext(ctx,
		`SELECT AVG(character_count) FROM message WHERE deleted_at IS NULL`,
	).Scan(&avgLength); err != nil {
		return nil, fmt.Errorf("failed to query average message length: %w", err)
	}
	snapshot.AvgMessageLength = avgLength.Float64

	// MIN/MAX are expressions, so the driver loses the column's declared
	// type and hands back text; parse it ourselves.
	var first, last sql.NullString
	if err := d.db.QueryRowContext(ctx,
		`SELECT MIN(created_at), MAX(created_at) FROM message WHERE deleted_at IS NULL`,
	).Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("failed to query message date range: %w", err)
	}
	if first.Valid {
		snapshot.FirstMessageAt = parseSQLiteTime(first.String)
	}
	if last.Valid {
		snapshot.LastMessageAt = parseSQLiteTime(last.String)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT COALESCE(language_code, 'unknown'), COUNT(*) FROM users
		WHERE is_bot = 0 GROUP BY language_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query language distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var count int64
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("failed to scan language row: %w", err)
		}
		snapshot.UsersByLanguage[lang] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate language rows: %w", err)
	}

	return snapshot, nil
}
