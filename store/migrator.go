package store

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Migration files live in store/migration/{driver}/NN__description.sql.
// They are sorted lexicographically and applied in order. All DDL is
// idempotent (CREATE TABLE IF NOT EXISTS), so re-running on an already
// initialized database is a no-op.

//go:embed migration
var migrationFS embed.FS

// Migrate applies all migration files for the configured driver.
func (s *Store) Migrate(ctx context.Context) error {
	dir := filepath.Join("migration", s.profile.Driver)
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read migration directory %q", dir)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return errors.Errorf("no migration files found for driver %q", s.profile.Driver)
	}

	db := s.driver.GetDB()
	for _, name := range names {
		buf, err := fs.ReadFile(migrationFS, filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file %q", name)
		}
		if _, err := db.ExecContext(ctx, string(buf)); err != nil {
			return errors.Wrapf(err, "migration %q failed", name)
		}
		slog.Info("migration applied", "file", name)
	}
	return nil
}
