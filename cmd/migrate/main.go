package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"contactbook/dynamodb"
	"contactbook/pkg/config"
	"contactbook/pkg/storage"
	"contactbook/sqldb"
)

func main() {
	var backend string
	flag.StringVar(&backend, "backend", "", "Backend to provision (sql or dynamodb). Defaults to STORE_BACKEND.")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	switch cfg.Store.Backend {
	case config.BackendSQL:
		err = migrateSQL(cfg, logger)
	case config.BackendDynamoDB:
		err = createTable(cfg, logger)
	default:
		logger.Info("nothing to migrate", "backend", cfg.Store.Backend)
	}
	if err != nil {
		os.Exit(1)
	}
}

func migrateSQL(cfg *config.Config, logger *slog.Logger) error {
	driverName, source := "postgres", sqldb.DSN(storage.SQLOptions(cfg))
	if cfg.DB.Driver == config.DriverSQLite {
		driverName, source = "sqlite3", cfg.DB.Path
	}

	db, err := sql.Open(driverName, source)
	if err != nil {
		logger.Error("cannot connect to db", "error", err)
		return err
	}
	defer db.Close()

	total, err := sqldb.Migrate(db, cfg.DB.Driver)
	if err != nil {
		logger.Error("cannot execute migration", "error", err)
		return err
	}

	logger.Info("applied migrations", "total", total, "driver", cfg.DB.Driver)
	return nil
}

func createTable(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	client, err := dynamodb.NewClient(ctx, storage.DynamoDBOptions(cfg))
	if err != nil {
		logger.Error("cannot create dynamodb client", "error", err)
		return err
	}

	if err := dynamodb.CreateContactsTable(ctx, client, cfg.DynamoDB.ContactsTable); err != nil {
		logger.Error("cannot create contacts table", "error", err)
		return err
	}

	logger.Info("contacts table ready", "table", cfg.DynamoDB.ContactsTable)
	return nil
}
