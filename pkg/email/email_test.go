package email

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/willsigmon/boppa/config"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		msg     Message
		wantErr string
	}{
		{
			name: "text and html",
			from: "noreply@example.com",
			msg:  Message{To: []string{"shop@example.com"}, Subject: "Hi", TextBody: "t", HTMLBody: "<p>h</p>"},
		},
		{
			name:    "missing from",
			msg:     Message{To: []string{"shop@example.com"}, Subject: "Hi", TextBody: "t"},
			wantErr: "sender address",
		},
		{
			name:    "blank recipients",
			from:    "noreply@example.com",
			msg:     Message{To: []string{" ", ""}, Subject: "Hi", TextBody: "t"},
			wantErr: "recipient",
		},
		{
			name:    "missing subject",
			from:    "noreply@example.com",
			msg:     Message{To: []string{"shop@example.com"}, TextBody: "t"},
			wantErr: "subject is required",
		},
		{
			name:    "missing body",
			from:    "noreply@example.com",
			msg:     Message{To: []string{"shop@example.com"}, Subject: "Hi"},
			wantErr: "TextBody or HTMLBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := buildMessage(tt.from, tt.msg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("buildMessage() error = %v", err)
				}
				if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "shop@example.com" {
					t.Errorf("To = %v", got)
				}
				return
			}
			var ie *InvalidMessageError
			if !errors.As(err, &ie) || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("buildMessage() error = %v, want InvalidMessageError mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildMessage_ReplyTo(t *testing.T) {
	msg, err := buildMessage("noreply@example.com", Message{
		To: []string{"shop@example.com"}, ReplyTo: " visitor@example.com ", Subject: "Hi", TextBody: "t",
	})
	if err != nil {
		t.Fatalf("buildMessage() error = %v", err)
	}
	if got := msg.GetHeader("Reply-To"); len(got) != 1 || got[0] != "visitor@example.com" {
		t.Errorf("Reply-To = %v", got)
	}
}

func TestClient_Disabled(t *testing.T) {
	c, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Send(context.Background(), Message{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Send() error = %v, want ErrDisabled", err)
	}
}

func TestNew_RequiresHostWhenEnabled(t *testing.T) {
	if _, err := New(Config{Enabled: true, From: "noreply@example.com"}); err == nil {
		t.Error("New() without smtp host succeeded")
	}
}

func TestFromCentralConfig(t *testing.T) {
	got := FromCentralConfig(config.EmailConfig{
		Enabled: true,
		From:    "noreply@example.com",
		SMTP:    config.SMTPConfig{Host: "smtp.example.com", UseTLS: true},
	})
	if got.SMTP.Port != 587 {
		t.Errorf("SMTP.Port = %d, want 587", got.SMTP.Port)
	}
	if got.SMTP.timeout() != 30*time.Second {
		t.Errorf("timeout() = %v, want 30s", got.SMTP.timeout())
	}
	if !got.SMTP.ImplicitTLS || got.SMTP.Host != "smtp.example.com" {
		t.Errorf("SMTP = %+v", got.SMTP)
	}
}

func TestBuildContactNotificationEmail(t *testing.T) {
	msg := BuildContactNotificationEmail(ContactNotificationData{
		ShopName:    "Boppa Golf",
		To:          []string{"shop@example.com"},
		ID:          7,
		FirstName:   "Arnold",
		LastName:    "Palmer",
		Email:       "arnie@example.com",
		Service:     "Regripping",
		Message:     "New grips please <script>alert(1)</script>",
		SubmittedAt: time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC),
	})

	if msg.Subject != "[Boppa Golf] New contact request from Arnold Palmer" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.ReplyTo != "arnie@example.com" {
		t.Errorf("ReplyTo = %q", msg.ReplyTo)
	}
	if len(msg.To) != 1 || msg.To[0] != "shop@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	for _, want := range []string{"#7", "Regripping", "Oct 19, 2026 15:04 UTC", "<script>"} {
		if !strings.Contains(msg.TextBody, want) {
			t.Errorf("TextBody missing %q", want)
		}
	}
	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Error("HTMLBody contains unescaped visitor input")
	}
	if !strings.Contains(msg.HTMLBody, "&lt;script&gt;") {
		t.Error("HTMLBody missing escaped message")
	}
}

func TestClient_SendStalledRelay(t *testing.T) {
	// Accepts connections but never sends the SMTP greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		var held []net.Conn
		defer func() {
			for _, c := range held {
				c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			held = append(held, c)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	c, err := New(Config{
		Enabled: true,
		From:    "noreply@example.com",
		SMTP:    SMTP{Host: addr.IP.String(), Port: addr.Port, Timeout: 200 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	err = c.Send(context.Background(), Message{To: []string{"shop@example.com"}, Subject: "Hi", TextBody: "t"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Send() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Send() returned after %v, want about 200ms", elapsed)
	}
}
