package sending

import (
	"errors"
	"fmt"
	"time"
)

// Message is one outbound email. It is built per request and discarded
// after the send.
type Message struct {
	From        string
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment      // sent in order
	Headers     map[string]string // custom headers (X-Bug-Report-Platform, ...)
}

// Attachment is a named file carried by a Message.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendResult is what an ESP reports for an accepted message.
type SendResult struct {
	MessageID string
	Provider  string
	SentAt    time.Time
}

var (
	ErrNoSender    = errors.New("sending: message has no sender")
	ErrNoRecipient = errors.New("sending: message has no recipient")
	ErrNoSubject   = errors.New("sending: message has no subject")
	ErrNoContent   = errors.New("sending: message has no body")
)

// Validate checks the fields every provider requires.
func (m *Message) Validate() error {
	switch {
	case m.From == "":
		return ErrNoSender
	case m.To == "":
		return ErrNoRecipient
	case m.Subject == "":
		return ErrNoSubject
	case m.HTML == "" && m.Text == "":
		return ErrNoContent
	}
	for i, a := range m.Attachments {
		if a.Filename == "" {
			return fmt.Errorf("sending: attachment %d has no filename", i)
		}
	}
	return nil
}

// DispatchError is returned when an ESP rejects a message. Body holds the
// raw provider response and must never be shown to API callers.
type DispatchError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Body)
}
