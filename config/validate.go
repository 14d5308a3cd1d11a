package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var environments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required for postgres"))
		}
		if c.Database.DBName == "" {
			errs = append(errs, errors.New("database.dbname is required for postgres"))
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite3"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported (postgres, sqlite3)", c.Database.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	if !environments[strings.ToLower(c.Server.Environment)] {
		errs = append(errs, fmt.Errorf("server.environment %q is not one of development, staging, production, test", c.Server.Environment))
	}

	if p := c.Server.Proxy; p.Header != "" && len(p.Trusted) == 0 && !p.TrustPrivate {
		errs = append(errs, errors.New("server.proxy.header needs server.proxy.trusted or server.proxy.trust_private"))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.WindowSeconds <= 0) {
		errs = append(errs, errors.New("rate_limit.requests_per_window and rate_limit.window_seconds must be positive"))
	}

	if c.Notifications.Contact.Enabled {
		if !c.Email.Enabled {
			errs = append(errs, errors.New("notifications.contact requires email.enabled"))
		}
		if len(c.Notifications.Contact.To) == 0 {
			errs = append(errs, errors.New("notifications.contact.to must list at least one recipient"))
		}
	}

	if c.Email.Enabled && strings.TrimSpace(c.Email.From) == "" {
		errs = append(errs, errors.New("email.from is required when email is enabled"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
