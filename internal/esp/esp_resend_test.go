package esp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/service/sending"
)

func testMessage() *sending.Message {
	return &sending.Message{
		From:    "Bug Reports <bugs@redoublet.com>",
		To:      "support@redoublet.com",
		ReplyTo: "tester@example.com",
		Subject: "Bug Report - ios - crash on launch",
		HTML:    "<p>crash</p>",
		Text:    "crash",
		Attachments: []sending.Attachment{
			{Filename: "device-info-1.json", Content: []byte(`{"platform":"ios"}`)},
		},
		Headers: map[string]string{"X-Bug-Report-Platform": "ios"},
	}
}

func newResendSender(t *testing.T, cfg config.ResendConfig) *ResendSender {
	t.Helper()
	s, err := NewResendSender(cfg)
	require.NoError(t, err)
	return s
}

func TestResendSender_Send(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer server.Close()

	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: server.URL + "/", TimeoutSeconds: 5})
	res, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", res.MessageID)
	assert.Equal(t, ProviderResend, res.Provider)

	assert.Equal(t, "Bug Reports <bugs@redoublet.com>", got["from"])
	assert.Equal(t, []any{"support@redoublet.com"}, got["to"])
	assert.Contains(t, fmt.Sprint(got["reply_to"]), "tester@example.com")
	assert.Equal(t, "Bug Report - ios - crash on launch", got["subject"])
	assert.Equal(t, map[string]any{"X-Bug-Report-Platform": "ios"}, got["headers"])

	attachments, ok := got["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)
	assert.Equal(t, "device-info-1.json", att["filename"])
	decoded, err := base64.StdEncoding.DecodeString(att["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, `{"platform":"ios"}`, string(decoded))
}

func TestResendSender_BaseURLWithoutSlash(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: server.URL})
	_, err := s.Send(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "/emails", path)
}

func TestResendSender_OmitsEmptyReplyTo(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer server.Close()

	msg := testMessage()
	msg.ReplyTo = ""
	msg.Attachments = nil

	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: server.URL})
	_, err := s.Send(context.Background(), msg)
	require.NoError(t, err)

	assert.NotContains(t, raw, "reply_to")
	assert.NotContains(t, raw, "attachments")
}

func TestResendSender_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"message":"Invalid from field","name":"validation_error"}`))
	}))
	defer server.Close()

	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: server.URL})
	_, err := s.Send(context.Background(), testMessage())
	require.Error(t, err)

	var de *sending.DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ProviderResend, de.Provider)
	assert.Equal(t, http.StatusUnprocessableEntity, de.StatusCode)
	assert.Contains(t, de.Body, "Invalid from field")
}

func TestResendSender_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: server.URL})
	_, err := s.Send(context.Background(), testMessage())
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestResendSender_MissingAPIKey(t *testing.T) {
	s := newResendSender(t, config.ResendConfig{BaseURL: "http://localhost"})
	_, err := s.Send(context.Background(), testMessage())
	assert.Error(t, err)
}

func TestResendSender_InvalidMessage(t *testing.T) {
	s := newResendSender(t, config.ResendConfig{APIKey: "re_test", BaseURL: "http://localhost"})
	msg := testMessage()
	msg.To = ""
	_, err := s.Send(context.Background(), msg)
	assert.ErrorIs(t, err, sending.ErrNoRecipient)
}

func TestNewResendSender_InvalidBaseURL(t *testing.T) {
	_, err := NewResendSender(config.ResendConfig{APIKey: "re_test", BaseURL: "http://bad host"})
	assert.Error(t, err)
}

func TestCaptureTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`denied`))
	}))
	defer server.Close()

	capture := &responseCapture{}
	req, err := http.NewRequestWithContext(context.WithValue(context.Background(), captureKey{}, capture), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := captureTransport{base: http.DefaultTransport}.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, capture.status)
	assert.Equal(t, "denied", string(capture.body))
	var body [16]byte
	n, _ := resp.Body.Read(body[:])
	assert.Equal(t, "denied", string(body[:n]), "body stays readable")
}
