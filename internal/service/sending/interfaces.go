// Package sending defines the email delivery contract used by the relay handlers.
//
// Each ESP (Resend, SES, the log-only dry run) implements the Sender
// interface. Handlers depend only on Sender so tests can inject an
// in-memory fake instead of a network client.
package sending

import "context"

// Sender sends a single email through an ESP. Implementations must be
// safe for concurrent use. A non-nil error means the message was not
// accepted; there is no retry.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg *Message) (*SendResult, error)

// Send calls f(ctx, msg).
func (f SenderFunc) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	return f(ctx, msg)
}
