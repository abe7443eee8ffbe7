// Package signup implements the beta-program signup endpoint.
package signup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/redoublet/formrelay/internal/pkg/httputil"
	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
	"github.com/redoublet/formrelay/internal/templates"
)

const (
	msgSuccess = "Successfully signed up for beta testing!"
	msgFailure = "Failed to process signup. Please try again or contact us directly."

	welcomeSubject = "Welcome to the Redoublet beta! / Welkom bij de Redoublet bèta!"
)

// Config holds the addresses and flags the handler needs.
type Config struct {
	From        string // sender of both emails
	To          string // operator receiving notifications
	ReplyTo     string // reply-to on the welcome email
	SendWelcome bool
	Development bool // echo dispatch error text in 500 responses
}

// Response is the success payload.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler serves the signup endpoint. It holds no per-request state.
type Handler struct {
	cfg      Config
	sender   sending.Sender
	renderer *templates.Renderer
	now      func() time.Time
}

// NewHandler creates a signup handler.
func NewHandler(cfg Config, sender sending.Sender, renderer *templates.Renderer) *Handler {
	return &Handler{
		cfg:      cfg,
		sender:   sender,
		renderer: renderer,
		now:      time.Now,
	}
}

// SetClock replaces the time source used in email bodies.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

// ServeHTTP handles OPTIONS preflight and POST submissions.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		httputil.Preflight(w)
		return
	case http.MethodPost:
	default:
		logger.Warn("signup: method not allowed", "method", r.Method)
		httputil.SetCORSHeaders(w)
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.SetCORSHeaders(w)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("signup: reading body failed", "error", err)
		httputil.BadRequest(w, MsgInvalidBody)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("signup: invalid body", "error", err)
		httputil.BadRequest(w, MsgInvalidBody)
		return
	}

	if err := req.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			logger.Warn("signup: rejected", "reason", ve.Message, "submitter", req.Email, "platform", req.Platform)
			httputil.BadRequest(w, ve.Message)
			return
		}
		httputil.InternalError(w, err, msgFailure)
		return
	}

	if err := h.dispatch(r.Context(), req); err != nil {
		logger.Error("signup: dispatch failed", "submitter", req.Email, "platform", req.Platform, "error", err)
		resp := httputil.ErrorResponse{Error: msgFailure}
		if h.cfg.Development {
			resp.Details = err.Error()
		}
		httputil.JSON(w, http.StatusInternalServerError, resp)
		return
	}

	httputil.OK(w, Response{Success: true, Message: msgSuccess})
}

// dispatch sends the operator notification and then, if enabled, the
// welcome email. A welcome failure after a successful notification is
// still reported as a failure.
func (h *Handler) dispatch(ctx context.Context, req Request) error {
	notification, err := h.notification(req)
	if err != nil {
		return err
	}
	res, err := h.sender.Send(ctx, notification)
	if err != nil {
		return fmt.Errorf("sending operator notification: %w", err)
	}
	logger.Info("signup: notification sent", "id", res.MessageID, "platform", req.NormalizedPlatform())

	if !h.cfg.SendWelcome {
		return nil
	}

	welcome, err := h.welcome(req)
	if err != nil {
		return err
	}
	res, err = h.sender.Send(ctx, welcome)
	if err != nil {
		return fmt.Errorf("sending welcome email: %w", err)
	}
	logger.Info("signup: welcome email sent", "id", res.MessageID, "submitter", req.Email)
	return nil
}

func (h *Handler) notification(req Request) (*sending.Message, error) {
	bindings := map[string]interface{}{
		"email":    req.Email,
		"platform": req.Platform,
		"date":     h.now().Format(time.RFC1123),
	}
	html, err := h.renderer.Render(templates.SignupNotificationHTML, bindings)
	if err != nil {
		return nil, err
	}
	text, err := h.renderer.Render(templates.SignupNotificationText, bindings)
	if err != nil {
		return nil, err
	}

	return &sending.Message{
		From:    h.cfg.From,
		To:      h.cfg.To,
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("New Beta Tester: %s - %s", req.Email, cases.Upper(language.Und).String(req.Platform)),
		HTML:    html,
		Text:    text,
	}, nil
}

func (h *Handler) welcome(req Request) (*sending.Message, error) {
	bindings := map[string]interface{}{
		"email":    req.Email,
		"platform": req.NormalizedPlatform(),
	}
	html, err := h.renderer.Render(templates.SignupWelcomeHTML, bindings)
	if err != nil {
		return nil, err
	}
	text, err := h.renderer.Render(templates.SignupWelcomeText, bindings)
	if err != nil {
		return nil, err
	}

	return &sending.Message{
		From:    h.cfg.From,
		To:      req.Email,
		ReplyTo: h.cfg.ReplyTo,
		Subject: welcomeSubject,
		HTML:    html,
		Text:    text,
	}, nil
}
