package esp

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
)

// ProviderSES is the SendResult.Provider value for AWS SES.
const ProviderSES = "ses"

// sesAPI is the subset of *sesv2.Client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES using the SDK v2. Messages go out as
// raw MIME so attachments and custom headers are preserved.
type SESSender struct {
	client  sesAPI
	timeout time.Duration
}

// NewSESSender creates an SES sender. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain.
func NewSESSender(ctx context.Context, cfg config.SESConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESSender{
		client:  sesv2.NewFromConfig(awsCfg),
		timeout: cfg.Timeout(),
	}, nil
}

// Send delivers a single email through AWS SES.
func (s *SESSender) Send(ctx context.Context, msg *sending.Message) (*sending.SendResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	raw, err := buildMIME(msg, time.Now())
	if err != nil {
		return nil, fmt.Errorf("building MIME message: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("ses send: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	logger.Info("ses: message accepted", "to", msg.To, "id", messageID)

	return &sending.SendResult{
		MessageID: messageID,
		Provider:  ProviderSES,
		SentAt:    time.Now(),
	}, nil
}
