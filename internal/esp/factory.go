package esp

import (
	"context"
	"fmt"

	"github.com/redoublet/formrelay/internal/config"
	"github.com/redoublet/formrelay/internal/service/sending"
)

// New returns the Sender selected by cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig) (sending.Sender, error) {
	switch cfg.Provider {
	case config.ProviderResend:
		if cfg.Resend.APIKey == "" {
			return nil, fmt.Errorf("resend API key not configured")
		}
		s, err := NewResendSender(cfg.Resend)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProviderSES:
		s, err := NewSESSender(ctx, cfg.SES)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProviderLog:
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
