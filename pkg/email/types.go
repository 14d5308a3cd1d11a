package email

import "context"

type Message struct {
	To       []string
	CC       []string
	BCC      []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

// Sender delivers messages. *Client is the SMTP implementation.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
