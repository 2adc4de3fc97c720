package postgres

import (
	"fmt"
	"time"
)

// PostgresStoreConfig holds PostgreSQL-specific configuration.
type PostgresStoreConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// MaxConns and MinConns bound the connection pool.
	MaxConns int32 `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns int32 `mapstructure:"min_conns" yaml:"min_conns"`

	// QueryTimeout is applied as the session statement timeout.
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`

	// AutoMigrate creates the catalog schema on startup when it is missing.
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *PostgresStoreConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 30 * time.Second
	}
}

// Validate checks that required fields are set.
func (c *PostgresStoreConfig) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("postgres store requires a database name")
	}
	if c.User == "" {
		return fmt.Errorf("postgres store requires a user")
	}
	return nil
}

// ConnectionString builds a pgx connection string from the configuration.
func (c *PostgresStoreConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}
