package esp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
)

// ProviderLog is the SendResult.Provider value for the dry-run sender.
const ProviderLog = "log"

// LogSender is a dry-run Sender: it logs the message summary instead of
// delivering it. Useful for local development without provider credentials.
type LogSender struct{}

// NewLogSender creates a dry-run sender.
func NewLogSender() *LogSender { return &LogSender{} }

// Send logs msg and returns a random message id.
func (s *LogSender) Send(ctx context.Context, msg *sending.Message) (*sending.SendResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	logger.Info("dry-run: message not sent",
		"id", id,
		"from", msg.From,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"attachments", names,
		"headers", msg.Headers,
	)

	return &sending.SendResult{
		MessageID: id,
		Provider:  ProviderLog,
		SentAt:    time.Now(),
	}, nil
}
