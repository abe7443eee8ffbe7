package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported email providers
const (
	ProviderResend = "resend"
	ProviderSES    = "ses"
	ProviderLog    = "log"
)

// EnvironmentDevelopment enables detailed error text in signup failure responses.
const EnvironmentDevelopment = "development"

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Environment string          `yaml:"environment"`
	LogLevel    string          `yaml:"log_level"`
	Email       EmailConfig     `yaml:"email"`
	Signup      SignupConfig    `yaml:"signup"`
	BugReport   BugReportConfig `yaml:"bug_report"`
}

// IsDevelopment reports whether the development flag is set.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvironmentDevelopment)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int    `yaml:"port"`
	Host         string `yaml:"host"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// EmailConfig selects and configures the transactional email provider
type EmailConfig struct {
	Provider string       `yaml:"provider"`
	Resend   ResendConfig `yaml:"resend"`
	SES      SESConfig    `yaml:"ses"`
}

// ResendConfig holds Resend API configuration
type ResendConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ResendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SESConfig holds AWS SES API configuration
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SignupConfig holds addresses used by the beta signup endpoint
type SignupConfig struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`       // operator address receiving notifications
	ReplyTo     string `yaml:"reply_to"` // reply-to on the welcome email
	SendWelcome *bool  `yaml:"send_welcome"`
}

// WelcomeEnabled reports whether the bilingual welcome email is sent.
// Unset means enabled.
func (c SignupConfig) WelcomeEnabled() bool {
	return c.SendWelcome == nil || *c.SendWelcome
}

// BugReportConfig holds addresses used by the bug report endpoint
type BugReportConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file. An empty path skips the
// file and returns the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 10 << 20
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Email.Provider == "" {
		cfg.Email.Provider = ProviderResend
	}
	if cfg.Email.Resend.BaseURL == "" {
		cfg.Email.Resend.BaseURL = "https://api.resend.com"
	}
	if cfg.Email.Resend.TimeoutSeconds == 0 {
		cfg.Email.Resend.TimeoutSeconds = 30
	}
	if cfg.Email.SES.Region == "" {
		cfg.Email.SES.Region = "us-east-1"
	}
	if cfg.Email.SES.TimeoutSeconds == 0 {
		cfg.Email.SES.TimeoutSeconds = 30
	}
	if cfg.Signup.From == "" {
		cfg.Signup.From = "Redoublet Beta <onboarding@resend.dev>"
	}
	if cfg.Signup.To == "" {
		cfg.Signup.To = "christiaantersteeg@gmail.com"
	}
	if cfg.Signup.ReplyTo == "" {
		cfg.Signup.ReplyTo = cfg.Signup.To
	}
	if cfg.BugReport.From == "" {
		cfg.BugReport.From = "Bug Reports <bugs@redoublet.com>"
	}
	if cfg.BugReport.To == "" {
		cfg.BugReport.To = "support@redoublet.com"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars when deployed.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}

	if v := os.Getenv("EMAIL_PROVIDER"); v != "" {
		cfg.Email.Provider = strings.ToLower(v)
	}
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		cfg.Email.Resend.APIKey = apiKey
	}
	if baseURL := os.Getenv("RESEND_BASE_URL"); baseURL != "" {
		cfg.Email.Resend.BaseURL = baseURL
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.Email.SES.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.Email.SES.SecretKey = secretKey
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.Email.SES.Region = region
	}

	// Signup overrides. The reply-to follows an overridden operator address
	// unless it is overridden itself.
	replyToFollowsOperator := cfg.Signup.ReplyTo == cfg.Signup.To
	if v := os.Getenv("SIGNUP_FROM_EMAIL"); v != "" {
		cfg.Signup.From = v
	}
	if v := os.Getenv("SIGNUP_TO_EMAIL"); v != "" {
		cfg.Signup.To = v
		if replyToFollowsOperator {
			cfg.Signup.ReplyTo = v
		}
	}
	if v := os.Getenv("SIGNUP_REPLY_TO_EMAIL"); v != "" {
		cfg.Signup.ReplyTo = v
	}
	if v := os.Getenv("SIGNUP_SEND_WELCOME"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SIGNUP_SEND_WELCOME %q: %w", v, err)
		}
		cfg.Signup.SendWelcome = &enabled
	}

	// Bug report overrides use the unprefixed variable names.
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		cfg.BugReport.From = v
	}
	if v := os.Getenv("TO_EMAIL"); v != "" {
		cfg.BugReport.To = v
	}

	return cfg, nil
}

// Validate checks that the selected provider is usable.
func (c *Config) Validate() error {
	switch c.Email.Provider {
	case ProviderResend:
		if c.Email.Resend.APIKey == "" {
			return fmt.Errorf("email provider %q requires RESEND_API_KEY", ProviderResend)
		}
	case ProviderSES:
		if c.Email.SES.Region == "" {
			return fmt.Errorf("email provider %q requires a region", ProviderSES)
		}
	case ProviderLog:
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
