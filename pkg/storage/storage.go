// Package storage opens the contact.Repository selected by configuration.
package storage

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"contactbook/contact"
	"contactbook/dynamodb"
	"contactbook/flatfile"
	"contactbook/pkg/config"
	"contactbook/sqldb"
)

// Closer releases resources held by an opened repository.
type Closer func() error

func noopCloser() error { return nil }

// SQLOptions maps the DB_* settings onto sqldb.Options.
func SQLOptions(cfg *config.Config) sqldb.Options {
	port := ""
	if cfg.DB.Port != 0 {
		port = strconv.Itoa(cfg.DB.Port)
	}
	return sqldb.Options{
		Driver:   cfg.DB.Driver,
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     port,
		SSLMode:  cfg.DB.EnableSSL,
		Path:     cfg.DB.Path,
	}
}

// DynamoDBOptions maps the DDB_* settings onto dynamodb.Options.
func DynamoDBOptions(cfg *config.Config) dynamodb.Options {
	return dynamodb.Options{
		Region:       cfg.DynamoDB.Region,
		Endpoint:     cfg.DynamoDB.Endpoint,
		AccessKey:    cfg.DynamoDB.AccessKey,
		SecretKey:    cfg.DynamoDB.SecretKey,
		SessionToken: cfg.DynamoDB.SessionToken,
	}
}

// Open returns the repository for cfg.Store.Backend. A sqlite database is
// migrated on open; Postgres and DynamoDB are provisioned by cmd/migrate.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (contact.Repository, Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Store.Backend {
	case config.BackendSQL:
		return openSQL(cfg)
	case config.BackendDynamoDB:
		client, err := dynamodb.NewClient(ctx, DynamoDBOptions(cfg))
		if err != nil {
			return nil, nil, err
		}
		return dynamodb.NewContactRepository(client, cfg.DynamoDB.ContactsTable), noopCloser, nil
	default:
		return flatfile.NewContactRepository(cfg.Store.FilePath, flatfile.WithLogger(logger)), noopCloser, nil
	}
}

func openSQL(cfg *config.Config) (contact.Repository, Closer, error) {
	db, err := sqldb.NewConnection(SQLOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("storage: open %s: %w", cfg.DB.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %w", err)
	}

	if cfg.DB.Driver == config.DriverSQLite {
		if _, err := sqldb.Migrate(sqlDB, cfg.DB.Driver); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}

	return sqldb.NewContactRepository(db), sqlDB.Close, nil
}
