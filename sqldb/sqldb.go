// Package sqldb stores contacts in a relational table through gorm. It
// serves Postgres and SQLite.
package sqldb

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver   string
	DBName   string
	DBUser   string
	Password string
	Host     string
	Port     string
	SSLMode  bool

	// Path is the database file for the sqlite driver.
	Path string
}

// DSN returns the Postgres data source name for opts.
func DSN(opts Options) string {
	sslmode := "disable"
	if opts.SSLMode {
		sslmode = "require"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		opts.Host, opts.Port, opts.DBUser, opts.Password, opts.DBName, sslmode,
	)
}

func NewConnection(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch opts.Driver {
	case DriverPostgres, "":
		return gorm.Open(postgres.Open(DSN(opts)), cfg)
	case DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqldb: sqlite path is required")
		}
		return gorm.Open(sqlite.Open(opts.Path), cfg)
	default:
		return nil, fmt.Errorf("sqldb: unknown driver %q", opts.Driver)
	}
}
