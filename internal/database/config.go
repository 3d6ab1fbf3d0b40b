package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/duckgate/internal/errs"
)

// Driver identifies the database engine behind a session.
// The set is closed: every formatting decision downstream switches on it.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver converts the wire value of db_type into a Driver.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return d, nil
	}
	return "", errs.Newf(errs.ErrKindValidation, "unsupported database type: %q", s)
}

// DefaultPort returns the engine's conventional TCP port, or 0 for SQLite.
func (d Driver) DefaultPort() int {
	switch d {
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	default:
		return 0
	}
}

// Config holds all settings needed to open and pool a database connection.
type Config struct {
	// Driver is the database engine (e.g. DriverPostgres).
	Driver Driver

	// Connection target. For SQLite, Database is the file path and the
	// network fields are ignored.
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Pool tuning
	MaxConns        int32         // maximum number of connections in the pool
	MinConns        int32         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// ConnectTimeout bounds establishing the pool and the initial ping.
	ConnectTimeout time.Duration
}

// DefaultConfig returns the pool settings used for every session.
// Sessions are per-caller, so the pool is kept small.
func DefaultConfig() *Config {
	return &Config{
		MaxConns:        5,
		MinConns:        0,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// WithTarget returns a copy of the pool settings bound to a connection target.
func (c *Config) WithTarget(driver Driver, host string, port int, user, password, database string) *Config {
	out := *c
	out.Driver = driver
	out.Host = host
	out.Port = port
	out.User = user
	out.Password = password
	out.Database = database
	return &out
}

// String describes the target without credentials, for logs.
func (c *Config) String() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("sqlite:%s", c.Database)
	}
	return fmt.Sprintf("%s://%s:%d/%s", c.Driver, c.Host, c.Port, c.Database)
}
