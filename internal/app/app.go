// Package app wires configuration into the relay handlers. The HTTP
// server and both Lambda entrypoints build their handlers here.
package app

import (
	"context"
	"fmt"

	"github.com/redoublet/formrelay/internal/bugreport"
	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/esp"
	"github.com/redoublet/formrelay/internal/pkg/logger"
	"github.com/redoublet/formrelay/internal/service/sending"
	"github.com/redoublet/formrelay/internal/signup"
	"github.com/redoublet/formrelay/internal/templates"
)

// Handlers are the constructed endpoint handlers.
type Handlers struct {
	Provider  string
	Signup    *signup.Handler
	BugReport *bugreport.Handler
}

// Setup applies logging settings from cfg, validates it, and builds the
// sender, renderer and handlers.
func Setup(ctx context.Context, cfg *config.Config) (*Handlers, error) {
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sender, err := esp.New(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("email provider: %w", err)
	}
	renderer, err := templates.New()
	if err != nil {
		return nil, err
	}

	return NewHandlers(cfg, sender, renderer), nil
}

// NewHandlers builds the handlers around an existing sender.
func NewHandlers(cfg *config.Config, sender sending.Sender, renderer *templates.Renderer) *Handlers {
	return &Handlers{
		Provider: cfg.Email.Provider,
		Signup: signup.NewHandler(signup.Config{
			From:        cfg.Signup.From,
			To:          cfg.Signup.To,
			ReplyTo:     cfg.Signup.ReplyTo,
			SendWelcome: cfg.Signup.WelcomeEnabled(),
			Development: cfg.IsDevelopment(),
		}, sender, renderer),
		BugReport: bugreport.NewHandler(bugreport.Config{
			From: cfg.BugReport.From,
			To:   cfg.BugReport.To,
		}, sender, renderer),
	}
}
