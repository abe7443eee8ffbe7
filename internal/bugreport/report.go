package bugreport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/buger/jsonparser"

	"github.com/redoublet/formrelay/internal/service/sending"
)

const (
	// LogAttachThreshold is the error-log length above which logs are
	// attached as a file instead of inlined.
	LogAttachThreshold = 500
	// LogExcerptLimit caps the inlined error-log excerpt.
	LogExcerptLimit = 1000
	// SubjectDescriptionLimit caps the description part of the subject.
	SubjectDescriptionLimit = 50
	// HeaderValueLimit caps client-supplied values placed in headers.
	HeaderValueLimit = 64

	truncatedMarker = "\n...(truncated)"
	unknown         = "Unknown"

	// isoMillis matches the millisecond ISO-8601 form apps send.
	isoMillis = "2006-01-02T15:04:05.000Z"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpg|jpeg);base64,`)

// Report is the bug report payload. Every field is optional.
type Report struct {
	DeviceInfo      json.RawMessage `json:"deviceInfo"`
	Screenshot      string          `json:"screenshot"`
	ErrorLogs       string          `json:"errorLogs"`
	UserDescription string          `json:"userDescription"`
}

// LogsAttached reports whether the error logs go out as a file.
func (r *Report) LogsAttached() bool {
	return utf8.RuneCountInString(r.ErrorLogs) > LogAttachThreshold
}

// Summary holds the quick-summary fields pulled out of deviceInfo.
type Summary struct {
	Platform   string
	Version    string
	AppVersion string
	Timestamp  string
}

// NormalizeDeviceInfo turns deviceInfo into its display form. A JSON
// string is used as-is; anything else is indented with two spaces.
// Absent and null both render as "null".
func NormalizeDeviceInfo(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("decoding deviceInfo string: %w", err)
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "", fmt.Errorf("formatting deviceInfo: %w", err)
	}
	return buf.String(), nil
}

// deviceField returns a top-level deviceInfo value if it is present and
// truthy: non-empty strings, non-zero numbers, true, objects and arrays.
// Values that are not JSON objects carry no fields.
func deviceField(raw json.RawMessage, key string) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}
	value, typ, _, err := jsonparser.Get(trimmed, key)
	if err != nil {
		return "", false
	}
	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil || s == "" {
			return "", false
		}
		return s, true
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(value)
		if err != nil || f == 0 {
			return "", false
		}
		return string(value), true
	case jsonparser.Boolean:
		if string(value) != "true" {
			return "", false
		}
		return "true", true
	case jsonparser.Object, jsonparser.Array:
		return string(value), true
	default:
		return "", false
	}
}

func deviceFieldOr(raw json.RawMessage, key, fallback string) string {
	if v, ok := deviceField(raw, key); ok {
		return v
	}
	return fallback
}

// Summarize extracts platform, version, appVersion and timestamp from
// deviceInfo, defaulting to "Unknown" and to now for the timestamp.
func Summarize(raw json.RawMessage, now time.Time) Summary {
	return Summary{
		Platform:   deviceFieldOr(raw, "platform", unknown),
		Version:    deviceFieldOr(raw, "version", unknown),
		AppVersion: deviceFieldOr(raw, "appVersion", unknown),
		Timestamp:  deviceFieldOr(raw, "timestamp", now.UTC().Format(isoMillis)),
	}
}

// DecodeScreenshot strips a data-URL prefix and decodes the base64 image.
func DecodeScreenshot(s string) ([]byte, error) {
	payload := dataURLPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	return data, nil
}

// BuildAttachments assembles the attachments in send order: screenshot
// if present, device info always, error logs when above the threshold.
func BuildAttachments(r *Report, deviceInfo string, now time.Time) ([]sending.Attachment, error) {
	stamp := now.UnixMilli()
	var out []sending.Attachment

	if r.Screenshot != "" {
		img, err := DecodeScreenshot(r.Screenshot)
		if err != nil {
			return nil, err
		}
		out = append(out, sending.Attachment{
			Filename: fmt.Sprintf("screenshot-%d.png", stamp),
			Content:  img,
		})
	}

	out = append(out, sending.Attachment{
		Filename: fmt.Sprintf("device-info-%d.json", stamp),
		Content:  []byte(deviceInfo),
	})

	if r.LogsAttached() {
		out = append(out, sending.Attachment{
			Filename: fmt.Sprintf("error-logs-%d.txt", stamp),
			Content:  []byte(r.ErrorLogs),
		})
	}
	return out, nil
}

// LogExcerpt returns the inline form of the error logs, cut at
// LogExcerptLimit characters with a truncation marker.
func LogExcerpt(logs string) string {
	if utf8.RuneCountInString(logs) <= LogExcerptLimit {
		return logs
	}
	return string([]rune(logs)[:LogExcerptLimit]) + truncatedMarker
}

// headerSafe makes a client-supplied value fit for a header line:
// control characters become spaces, whitespace runs collapse, and the
// result is cut at limit characters.
func headerSafe(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > limit {
		s = strings.TrimSpace(string([]rune(s)[:limit]))
	}
	return s
}

// headerField is deviceFieldOr for values bound for headers.
func headerField(raw json.RawMessage, key, fallback string) string {
	if v := headerSafe(deviceFieldOr(raw, key, ""), HeaderValueLimit); v != "" {
		return v
	}
	return fallback
}

// Subject builds "Bug Report - <platform> - <description start>".
func Subject(r *Report) string {
	platform := headerField(r.DeviceInfo, "platform", "Unknown Platform")
	desc := headerSafe(r.UserDescription, SubjectDescriptionLimit)
	if desc == "" {
		desc = "No Description"
	}
	return fmt.Sprintf("Bug Report - %s - %s", platform, desc)
}

// Headers returns the custom triage headers.
func Headers(r *Report) map[string]string {
	return map[string]string{
		"X-Bug-Report-Platform": headerField(r.DeviceInfo, "platform", "unknown"),
		"X-Bug-Report-Version":  headerField(r.DeviceInfo, "appVersion", "unknown"),
	}
}
