package signup

import (
	"regexp"
	"strings"
)

// Client-visible validation messages.
const (
	MsgInvalidBody     = "Invalid request body"
	MsgMissingFields   = "Email and platform are required"
	MsgInvalidEmail    = "Invalid email address"
	MsgInvalidPlatform = "Invalid platform selection"
)

// Recognized platforms
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// emailChar excludes every whitespace rune browsers treat as \s: ASCII
// space and controls, vertical tab, Unicode separators and the BOM.
const emailChar = `[^\s\v\p{Z}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`)

// Request is the beta signup form.
type Request struct {
	Email    string `json:"email"`
	Platform string `json:"platform"`
}

// ValidationError is a client error whose message is safe to return as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate applies the checks in order and returns the first failure.
func (r Request) Validate() error {
	if r.Email == "" || r.Platform == "" {
		return &ValidationError{Message: MsgMissingFields}
	}
	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	switch r.NormalizedPlatform() {
	case PlatformIOS, PlatformAndroid:
	default:
		return &ValidationError{Message: MsgInvalidPlatform}
	}
	return nil
}

// NormalizedPlatform returns the lower-cased platform key.
func (r Request) NormalizedPlatform() string {
	return strings.ToLower(r.Platform)
}
