package esp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
)

// ProviderResend is the SendResult.Provider value for Resend.
const ProviderResend = "resend"

// ResendSender sends emails via the Resend API client.
type ResendSender struct {
	apiKey string
	client *resend.Client
}

// NewResendSender creates a sender targeting the Resend API.
func NewResendSender(cfg config.ResendConfig) (*ResendSender, error) {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: captureTransport{base: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, cfg.APIKey)

	if cfg.BaseURL != "" {
		// The client resolves endpoint paths against BaseURL, so it must
		// end in a slash.
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid resend base URL %q: %w", cfg.BaseURL, err)
		}
		client.BaseURL = base
	}

	return &ResendSender{apiKey: cfg.APIKey, client: client}, nil
}

// Send delivers a single email through Resend. One attempt only.
func (s *ResendSender) Send(ctx context.Context, msg *sending.Message) (*sending.SendResult, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("resend API key not configured")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
		Headers: msg.Headers,
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	capture := &responseCapture{}
	sent, err := s.client.Emails.SendWithContext(context.WithValue(ctx, captureKey{}, capture), params)
	if err != nil {
		if capture.status >= http.StatusBadRequest {
			return nil, &sending.DispatchError{
				Provider:   ProviderResend,
				StatusCode: capture.status,
				Body:       string(capture.body),
			}
		}
		return nil, fmt.Errorf("resend request: %w", err)
	}

	logger.Info("resend: message accepted", "to", msg.To, "id", sent.Id)

	return &sending.SendResult{
		MessageID: sent.Id,
		Provider:  ProviderResend,
		SentAt:    time.Now(),
	}, nil
}

// responseCapture receives the status and error body of the provider
// response for one Send call.
type responseCapture struct {
	status int
	body   []byte
}

type captureKey struct{}

// captureTransport records provider error responses into the
// responseCapture carried by the request context, leaving the body
// readable for the client.
type captureTransport struct {
	base http.RoundTripper
}

func (t captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c, ok := req.Context().Value(captureKey{}).(*responseCapture)
	if !ok {
		return resp, nil
	}
	c.status = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		c.body = body
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}
