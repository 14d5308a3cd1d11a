package database

import (
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/willsigmon/boppa/config"
)

// Config holds database connection and behavior settings
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Path is the database file for sqlite3. ":memory:" opens a fresh
	// in-memory database shared by the connections of one pool.
	Path string

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int

	// Migration control
	AutoMigrate bool

	// EnableLogging logs every statement through slog (see WithQueryLogging).
	EnableLogging bool
}

// DSN returns the driver specific connection string
func (c Config) DSN() string {
	if c.Driver == config.DriverSQLite {
		return sqliteDSN(c.Path)
	}
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// SQLDriverName returns the database/sql driver name registered for the dialect.
func (c Config) SQLDriverName() string {
	if c.Driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgres"
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	return Config{
		Driver:             c.Driver,
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		DBName:             c.DBName,
		SSLMode:            c.SSLMode,
		Path:               c.Path,
		MaxOpenConns:       c.Pool.MaxOpenConns,
		MaxIdleConns:       c.Pool.MaxIdleConns,
		ConnMaxLifetimeMin: c.Pool.ConnMaxLifetimeMin,
		AutoMigrate:        c.Migrations.AutoMigrate,
		EnableLogging:      c.Logging.Enabled,
	}
}

var memoryDBSeq atomic.Uint64

// sqliteDSN enables foreign keys (required by the migration engine) and a
// busy timeout so concurrent writers wait instead of failing.
func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path == ":memory:" {
		q.Set("mode", "memory")
		q.Set("cache", "shared")
		return fmt.Sprintf("file:boppa-%d?%s", memoryDBSeq.Add(1), q.Encode())
	}
	return fmt.Sprintf("file:%s?%s", path, q.Encode())
}
