// Package httputil provides shared HTTP response helpers for the relay handlers.
//
// Handlers use these helpers instead of writing raw http.ResponseWriter
// calls so every endpoint returns the same JSON envelope and the same
// cross-origin headers.
package httputil
