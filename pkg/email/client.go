package email

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"

	"github.com/willsigmon/boppa/config"
	"gopkg.in/gomail.v2"
)

// Client sends mail over SMTP with gomail.
type Client struct {
	cfg Config
}

var _ Sender = (*Client)(nil)

// NewFromCentral creates a new email client from central config
func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.SMTP.Host) == "" {
		return nil, errors.New("email: smtp host is required when email is enabled")
	}
	return &Client{cfg: cfg}, nil
}

// Send delivers m through the relay. The SMTP exchange runs in its own
// goroutine and is abandoned once ctx or the configured timeout expires.
//
// gomail bounds only the dial (10s) and sets no I/O deadline on the session,
// so an abandoned exchange with a stalled relay lives on until the kernel
// gives up on the TCP connection. done is buffered so that goroutine can
// always finish once it unblocks.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SMTP.timeout())
	defer cancel()

	d := c.newDialer()
	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return &SendError{Host: c.cfg.SMTP.Host, Recipients: len(msg.GetHeader("To")), Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) newDialer() *gomail.Dialer {
	s := c.cfg.SMTP
	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.SSL = s.ImplicitTLS && s.Port == 465
	d.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	return d
}

// buildMessage validates m and renders it as a gomail message. Blank
// addresses and headers are dropped; a text and HTML body pair becomes a
// multipart/alternative.
func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, invalid("from", "sender address is required")
	}
	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, invalid("to", "at least one recipient is required")
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, invalid("subject", "subject is required")
	}
	text, html := strings.TrimSpace(m.TextBody) != "", strings.TrimSpace(m.HTMLBody) != ""
	if !text && !html {
		return nil, invalid("body", "either TextBody or HTMLBody is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeaders(map[string][]string{
		"From":    {from},
		"To":      to,
		"Subject": {subject},
	})
	if cc := cleanAddrs(m.CC); len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}
	if bcc := cleanAddrs(m.BCC); len(bcc) > 0 {
		msg.SetHeader("Bcc", bcc...)
	}
	if r := strings.TrimSpace(m.ReplyTo); r != "" {
		msg.SetHeader("Reply-To", r)
	}
	for k, v := range m.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			msg.SetHeader(k, v)
		}
	}

	switch {
	case text && html:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case html:
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}
	return msg, nil
}

func cleanAddrs(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
