package database

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/willsigmon/boppa/config"
)

// NewEntDriver creates an ent SQL driver from central config
func NewEntDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewEntDriverFromConfig(FromCentralConfig(cfg))
}

// NewEntDriverFromConfig creates an ent SQL driver from package Config
func NewEntDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}

	return entsql.OpenDB(entDialect(cfg.Driver), db), nil
}

// WithQueryLogging wraps drv so each statement, with its arguments, is
// logged at info level under the caller's context. It returns drv unchanged
// when enabled is false.
func WithQueryLogging(drv dialect.Driver, enabled bool) dialect.Driver {
	if !enabled {
		return drv
	}
	return dialect.DebugWithContext(drv, func(ctx context.Context, v ...any) {
		slog.InfoContext(ctx, "sql", "stmt", fmt.Sprint(v...))
	})
}

// Migrate creates or upgrades the given tables in place.
func Migrate(ctx context.Context, drv dialect.Driver, tables ...*schema.Table) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func entDialect(driver string) string {
	if driver == config.DriverSQLite {
		return dialect.SQLite
	}
	return dialect.Postgres
}
