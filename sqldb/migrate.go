package sqldb

import (
	"database/sql"
	"embed"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations
var migrationFS embed.FS

// Dialect maps a driver name to its sql-migrate dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres, "":
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("sqldb: unknown driver %q", driver)
	}
}

// Migrate applies every pending up migration for driver and returns how
// many ran.
func Migrate(db *sql.DB, driver string) (int, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return 0, err
	}

	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations/" + dialect,
	}

	n, err := migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return n, fmt.Errorf("sqldb: migrate %s: %w", dialect, err)
	}
	return n, nil
}
