package postgres

import (
	"context"
	"fmt"
)

// RunReadOnlyQuery executes an already-validated SELECT statement and
// returns the rows as ordered column->value maps. Keyword gating happens
// upstream; defense in depth is the read-only role this connection should
// use in production.
func (d *DB) RunReadOnlyQuery(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			v := values[i]
			// lib/pq hands back []byte for text-ish columns.
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[name] = v
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return results, nil
}
