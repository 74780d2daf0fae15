package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that a store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ChatMessage model related methods.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	SoftDeleteChatMessages(ctx context.Context, sessionID string) error

	// RunReadOnlyQuery executes an already-validated SELECT statement and
	// returns the rows as ordered column->value maps. The result is
	// ephemeral and never persisted.
	RunReadOnlyQuery(ctx context.Context, query string) ([]map[string]any, error)

	// DashboardSnapshot aggregates usage statistics over the users/message tables.
	DashboardSnapshot(ctx context.Context) (*DashboardSnapshot, error)
}
