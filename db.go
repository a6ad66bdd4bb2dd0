package taskpages

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// NewDB wraps an already-open *sql.DB with the bun dialect matching driver
// ("sqlite3" or "postgres"). Callers opening postgres connections register
// their own driver; sqlite is bundled.
func NewDB(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres", "pg", "pgx":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("taskpages: unsupported database driver %q", driver)
	}
}

// OpenSQLite opens a sqlite database at dsn and wraps it for bun. Use
// "file::memory:?cache=shared" for an in-memory database.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("taskpages: open sqlite: %w", err)
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
