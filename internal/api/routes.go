package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/redoublet/formrelay/internal/pkg/httputil"
)

// Routes holds the endpoint handlers. A nil handler leaves its paths
// unregistered.
type Routes struct {
	Signup    http.Handler
	BugReport http.Handler
	Health    http.HandlerFunc

	// Default serves every path no route matched. Single-function
	// deployments set it so the API Gateway resource path does not matter.
	Default http.Handler
}

// Options tunes the middleware stack.
type Options struct {
	MaxBodyBytes int64
	// RequestLogging enables chi's access log. Off in Lambda, where the
	// platform logs invocations.
	RequestLogging bool
}

// NewRouter configures the relay routes.
func NewRouter(routes Routes, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.RequestLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}

	// CORS - public form endpoints, any origin. Preflights pass through so
	// the handlers answer them with their own headers.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{httputil.AllowOrigin},
		AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{httputil.AllowHeaders},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	if routes.Health != nil {
		r.Get("/health", routes.Health)
	}

	// Handlers do their own method dispatch so OPTIONS and 405 answers
	// carry the relay's CORS headers.
	if routes.Signup != nil {
		r.Handle("/api/beta-signup", routes.Signup)
		r.Handle("/.netlify/functions/beta-signup", routes.Signup)
	}
	if routes.BugReport != nil {
		r.Handle("/api/bug-report", routes.BugReport)
		r.Handle("/.netlify/functions/bug-report", routes.BugReport)
	}

	if routes.Default != nil {
		r.NotFound(routes.Default.ServeHTTP)
	}

	return r
}
