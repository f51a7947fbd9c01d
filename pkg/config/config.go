package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQL      = "sql"
	BackendDynamoDB = "dynamodb"
)

// SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV" default:"local"`
	Port         int    `envconfig:"PORT" default:"8080"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile      string `envconfig:"LOG_FILE" default:"contacts.log"`

	Store struct {
		Backend  string `envconfig:"STORE_BACKEND" default:"file"`
		FilePath string `envconfig:"STORE_FILE_PATH" default:"contacts.txt"`
	}
	DB struct {
		Driver    string `envconfig:"DB_DRIVER" default:"sqlite"`
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
		Path      string `envconfig:"DB_PATH" default:"contacts.db"`
	}
	DynamoDB struct {
		Region        string `envconfig:"DDB_REGION"`
		Endpoint      string `envconfig:"DDB_ENDPOINT"`
		AccessKey     string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey     string `envconfig:"DDB_SECRET_KEY"`
		SessionToken  string `envconfig:"DDB_SESSION_TOKEN"`
		ContactsTable string `envconfig:"DDB_CONTACTS_TABLE" default:"contacts"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

// Validate rejects backend and driver names the application cannot serve.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("config: STORE_FILE_PATH is required for the file backend")
		}
	case BackendSQL:
		switch c.DB.Driver {
		case DriverPostgres, DriverSQLite:
		default:
			return fmt.Errorf("config: unknown DB_DRIVER %q", c.DB.Driver)
		}
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return fmt.Errorf("config: DDB_REGION is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}
