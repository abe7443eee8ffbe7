// Package bugreport implements the in-app bug report endpoint.
package bugreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/redoublet/formrelay/internal/pkg/httputil"
	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
	"github.com/redoublet/formrelay/internal/templates"
)

const (
	msgSuccess = "Bug report sent successfully"
	msgFailure = "Failed to send bug report. Please try again later."

	receivedLayout = "1/2/2006, 3:04:05 PM"
)

// Config holds the bug report addresses.
type Config struct {
	From string
	To   string
}

// Response is the body of every non-preflight reply except 405.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler serves the bug report endpoint.
type Handler struct {
	cfg      Config
	sender   sending.Sender
	renderer *templates.Renderer
	now      func() time.Time
}

// NewHandler creates a bug report handler.
func NewHandler(cfg Config, sender sending.Sender, renderer *templates.Renderer) *Handler {
	return &Handler{
		cfg:      cfg,
		sender:   sender,
		renderer: renderer,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for timestamps and filenames.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		httputil.Preflight(w)
		return
	case http.MethodPost:
	default:
		logger.Warn("bugreport: method not allowed", "method", r.Method)
		httputil.SetCORSHeaders(w)
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.SetCORSHeaders(w)

	id, err := h.handle(r)
	if err != nil {
		logger.Error("bugreport: failed", "error", err)
		httputil.JSON(w, http.StatusInternalServerError, Response{Success: false, Error: msgFailure})
		return
	}

	logger.Info("bugreport: sent", "id", id)
	httputil.OK(w, Response{Success: true, Message: msgSuccess, ID: id})
}

func (h *Handler) handle(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return "", fmt.Errorf("parsing body: %w", err)
	}

	msg, err := h.compose(&report)
	if err != nil {
		return "", err
	}
	return h.send(r.Context(), msg)
}

func (h *Handler) send(ctx context.Context, msg *sending.Message) (string, error) {
	res, err := h.sender.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("sending bug report: %w", err)
	}
	return res.MessageID, nil
}

// compose builds the operator email for a report.
func (h *Handler) compose(report *Report) (*sending.Message, error) {
	now := h.now()

	deviceInfo, err := NormalizeDeviceInfo(report.DeviceInfo)
	if err != nil {
		return nil, err
	}
	attachments, err := BuildAttachments(report, deviceInfo, now)
	if err != nil {
		return nil, err
	}

	summary := Summarize(report.DeviceInfo, now)
	bindings := map[string]interface{}{
		"received_at":     now.UTC().Format(receivedLayout),
		"has_description": report.UserDescription != "",
		"description":     report.UserDescription,
		"summary": map[string]interface{}{
			"platform":    summary.Platform,
			"version":     summary.Version,
			"app_version": summary.AppVersion,
			"timestamp":   summary.Timestamp,
		},
		"logs_attached":  report.LogsAttached(),
		"logs_length":    utf8.RuneCountInString(report.ErrorLogs),
		"has_logs":       report.ErrorLogs != "",
		"logs_excerpt":   LogExcerpt(report.ErrorLogs),
		"has_screenshot": report.Screenshot != "",
	}

	html, err := h.renderer.Render(templates.BugReportHTML, bindings)
	if err != nil {
		return nil, err
	}
	text, err := h.renderer.Render(templates.BugReportText, bindings)
	if err != nil {
		return nil, err
	}

	return &sending.Message{
		From:        h.cfg.From,
		To:          h.cfg.To,
		Subject:     Subject(report),
		HTML:        html,
		Text:        text,
		Attachments: attachments,
		Headers:     Headers(report),
	}, nil
}
