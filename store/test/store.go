// Package test provides a SQLite-backed testing store.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/store"
	"github.com/adminparrot/adminparrot/store/db/sqlite"
)

// NewTestingStore opens a migrated SQLite store in a per-test temp directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	testProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "adminparrot_test.db"),
	}

	driver, err := sqlite.NewDB(testProfile)
	require.NoError(t, err)

	ts := store.New(driver, testProfile)
	require.NoError(t, ts.Migrate(ctx))

	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}
