package store

import (
	"context"

	"github.com/adminparrot/adminparrot/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) SoftDeleteChatMessages(ctx context.Context, sessionID string) error {
	return s.driver.SoftDeleteChatMessages(ctx, sessionID)
}

func (s *Store) RunReadOnlyQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return s.driver.RunReadOnlyQuery(ctx, query)
}

func (s *Store) DashboardSnapshot(ctx context.Context) (*DashboardSnapshot, error) {
	return s.driver.DashboardSnapshot(ctx)
}
