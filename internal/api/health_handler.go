package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redoublet/formrelay/internal/pkg/httputil"
)

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Provider string `json:"provider"` // configured email provider
}

// HealthChecker reports process liveness and the configured provider.
// It does not call the provider.
type HealthChecker struct {
	provider  string
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker(provider string) *HealthChecker {
	return &HealthChecker{
		provider:  provider,
		startTime: time.Now(),
	}
}

const healthVersion = "1.0.0"

// HandleHealth returns 200 while the process is serving.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, HealthStatus{
		Status:   "healthy",
		Version:  healthVersion,
		Uptime:   formatUptime(time.Since(hc.startTime)),
		Provider: hc.provider,
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
