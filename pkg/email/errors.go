package email

import (
	"errors"
	"fmt"
)

// ErrDisabled is returned by Send when the client was built with email turned off.
var ErrDisabled = errors.New("email: delivery disabled")

// InvalidMessageError reports a message that cannot be handed to SMTP.
type InvalidMessageError struct {
	Field  string
	Reason string
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("email: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &InvalidMessageError{Field: field, Reason: reason}
}

// SendError wraps a failure from the SMTP relay.
type SendError struct {
	Host       string
	Recipients int
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("email: relay %s rejected message for %d recipient(s): %v", e.Host, e.Recipients, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
