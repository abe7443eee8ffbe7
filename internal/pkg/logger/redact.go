package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
// Display-name forms keep the name: "Jo <john@example.com>" → "Jo <jo***@example.com>"
func RedactEmail(email string) string {
	if open := strings.LastIndex(email, "<"); open >= 0 && strings.HasSuffix(email, ">") {
		return email[:open+1] + RedactEmail(email[open+1:len(email)-1]) + ">"
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
