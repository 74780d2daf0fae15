package db

import (
	"github.com/pkg/errors"

	"github.com/adminparrot/adminparrot/internal/profile"
	"github.com/adminparrot/adminparrot/store"
	"github.com/adminparrot/adminparrot/store/db/postgres"
	"github.com/adminparrot/adminparrot/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// PostgreSQL is the production database; the admin pipeline is expected to
// connect with a read-only role for the query execution path. SQLite is
// supported for development and testing.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
