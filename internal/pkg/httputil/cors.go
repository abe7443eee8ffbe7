package httputil

import "net/http"

// Cross-origin headers written on every relay response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type"
	AllowMethods = "POST, OPTIONS"
)

// SetCORSHeaders marks the response as callable from any browser origin.
func SetCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
}

// Preflight answers a CORS preflight: 200, permission headers, empty body.
// The request body is ignored.
func Preflight(w http.ResponseWriter) {
	SetCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
}
