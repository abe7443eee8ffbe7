package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  max_body_bytes: 1024

environment: development
log_level: debug

email:
  provider: ses
  resend:
    api_key: "test-api-key"
    base_url: "https://resend.test"
    timeout_seconds: 45
  ses:
    region: "eu-west-1"

signup:
  from: "Beta <beta@example.com>"
  to: "ops@example.com"
  send_welcome: false

bug_report:
  from: "Bugs <bugs@example.com>"
  to: "support@example.com"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, ProviderSES, cfg.Email.Provider)
	assert.Equal(t, "test-api-key", cfg.Email.Resend.APIKey)
	assert.Equal(t, "https://resend.test", cfg.Email.Resend.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Email.Resend.Timeout())
	assert.Equal(t, "eu-west-1", cfg.Email.SES.Region)

	assert.Equal(t, "Beta <beta@example.com>", cfg.Signup.From)
	assert.Equal(t, "ops@example.com", cfg.Signup.To)
	assert.Equal(t, "ops@example.com", cfg.Signup.ReplyTo)
	assert.False(t, cfg.Signup.WelcomeEnabled())

	assert.Equal(t, "Bugs <bugs@example.com>", cfg.BugReport.From)
	assert.Equal(t, "support@example.com", cfg.BugReport.To)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, ProviderResend, cfg.Email.Provider)
	assert.Equal(t, "https://api.resend.com", cfg.Email.Resend.BaseURL)
	assert.Equal(t, 30, cfg.Email.Resend.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Email.SES.TimeoutSeconds)
	assert.Equal(t, "us-east-1", cfg.Email.SES.Region)
	assert.Equal(t, "Redoublet Beta <onboarding@resend.dev>", cfg.Signup.From)
	assert.Equal(t, cfg.Signup.To, cfg.Signup.ReplyTo)
	assert.True(t, cfg.Signup.WelcomeEnabled())
	assert.Equal(t, "Bug Reports <bugs@redoublet.com>", cfg.BugReport.From)
	assert.Equal(t, "support@redoublet.com", cfg.BugReport.To)
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
email:
  resend:
    api_key: "file-key"
    base_url: "https://file-url.com"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("RESEND_API_KEY", "env-key")
	t.Setenv("RESEND_BASE_URL", "https://env-url.com")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PORT", "3000")
	t.Setenv("SIGNUP_TO_EMAIL", "operator@example.com")
	t.Setenv("SIGNUP_SEND_WELCOME", "false")
	t.Setenv("FROM_EMAIL", "Reports <reports@example.com>")
	t.Setenv("TO_EMAIL", "triage@example.com")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, "env-key", cfg.Email.Resend.APIKey)
	assert.Equal(t, "https://env-url.com", cfg.Email.Resend.BaseURL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "operator@example.com", cfg.Signup.To)
	assert.Equal(t, "operator@example.com", cfg.Signup.ReplyTo)
	assert.False(t, cfg.Signup.WelcomeEnabled())
	assert.Equal(t, "Reports <reports@example.com>", cfg.BugReport.From)
	assert.Equal(t, "triage@example.com", cfg.BugReport.To)
}

func TestLoadFromEnvReplyToOverride(t *testing.T) {
	t.Setenv("SIGNUP_TO_EMAIL", "operator@example.com")
	t.Setenv("SIGNUP_REPLY_TO_EMAIL", "hello@example.com")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, "operator@example.com", cfg.Signup.To)
	assert.Equal(t, "hello@example.com", cfg.Signup.ReplyTo)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := LoadFromEnv("")
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("SIGNUP_SEND_WELCOME", "maybe")
	_, err = LoadFromEnv("")
	assert.Error(t, err)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "resend without api key")

	cfg.Email.Resend.APIKey = "re_123"
	assert.NoError(t, cfg.Validate())

	cfg.Email.Provider = ProviderSES
	assert.NoError(t, cfg.Validate())

	cfg.Email.Provider = ProviderLog
	assert.NoError(t, cfg.Validate())

	cfg.Email.Provider = "pigeon"
	assert.Error(t, cfg.Validate())

	cfg.Email.Provider = ProviderLog
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestTimeout(t *testing.T) {
	cfg := SESConfig{TimeoutSeconds: 45}
	assert.Equal(t, 45*time.Second, cfg.Timeout())
}
