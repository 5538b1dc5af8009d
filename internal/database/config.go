package database

import (
	"time"

	"github.com/koustreak/tablescope/internal/errs"
)

// Driver identifies the database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Dialect returns the SQL dialect spoken by the engine.
func (d Driver) Dialect() Dialect {
	if d == DriverPostgres {
		return DialectPostgres
	}
	return DialectMySQL
}

// Config holds all settings needed to connect to and pool a database.
type Config struct {
	// Driver is the database engine (e.g. DriverMySQL).
	Driver Driver `yaml:"driver"`

	// DSN is the full data source name / connection string.
	// Example: "user:pass@tcp(localhost:3306)/shop"
	DSN string `yaml:"dsn"`

	// Pool tuning
	MaxConns        int32         `yaml:"max_conns"`         // maximum number of connections in the pool
	MinConns        int32         `yaml:"min_conns"`         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"` // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // time limit for establishing a new connection
	QueryTimeout   time.Duration `yaml:"query_timeout"`   // default per-query deadline (applied by callers)
}

// DefaultConfig returns pool settings suited to short metadata queries.
func DefaultConfig(dsn string) *Config {
	return &Config{
		Driver:          DriverMySQL,
		DSN:             dsn,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}

// Validate checks the settings a driver cannot default on its own.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return errs.Newf(errs.ErrKindInvalidInput, "unsupported database driver %q", c.Driver)
	}
	if c.DSN == "" {
		return errs.New(errs.ErrKindInvalidInput, "database dsn is required")
	}
	if c.MinConns > c.MaxConns {
		return errs.Newf(errs.ErrKindInvalidInput, "min_conns (%d) exceeds max_conns (%d)", c.MinConns, c.MaxConns)
	}
	return nil
}
