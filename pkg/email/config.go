package email

import (
	"time"

	"github.com/willsigmon/boppa/config"
)

const (
	defaultSMTPPort    = 587
	defaultSMTPTimeout = 30 * time.Second
)

// Config is the resolved mailer configuration. A disabled Config is valid
// and turns Send into a no-op that reports ErrDisabled.
type Config struct {
	Enabled bool
	From    string
	SMTP    SMTP
}

// SMTP describes the relay notifications are handed to.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	// ImplicitTLS dials TLS directly. It is only honoured on port 465;
	// every other port negotiates STARTTLS.
	ImplicitTLS bool
	Timeout     time.Duration
}

// FromCentralConfig resolves config.EmailConfig. An unset port falls back
// to submission (587).
func FromCentralConfig(c config.EmailConfig) Config {
	s := SMTP{
		Host:        c.SMTP.Host,
		Port:        c.SMTP.Port,
		Username:    c.SMTP.Username,
		Password:    c.SMTP.Password,
		ImplicitTLS: c.SMTP.UseTLS,
		Timeout:     time.Duration(c.SMTP.TimeoutSeconds) * time.Second,
	}
	if s.Port <= 0 {
		s.Port = defaultSMTPPort
	}
	return Config{Enabled: c.Enabled, From: c.From, SMTP: s}
}

func (s SMTP) timeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultSMTPTimeout
	}
	return s.Timeout
}
