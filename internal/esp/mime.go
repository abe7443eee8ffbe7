package esp

import (
	"bytes"
	"fmt"
	"mime"
	"net/textproto"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/redoublet/formrelay/internal/service/sending"
)

// buildMIME renders msg as an RFC 5322 message: multipart/mixed holding a
// multipart/alternative body (text, html) followed by the attachments.
func buildMIME(msg *sending.Message, now time.Time) ([]byte, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(now)
	m.SetMessageIDWithValue(uuid.NewString() + "@formrelay")

	// Custom headers in a stable order.
	names := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		m.SetGenHeader(mail.Header(textproto.CanonicalMIMEHeaderKey(k)), msg.Headers[k])
	}

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	for _, a := range msg.Attachments {
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Content),
			mail.WithFileContentType(mail.ContentType(attachmentType(a.Filename))))
		if err != nil {
			return nil, fmt.Errorf("attaching %s: %w", a.Filename, err)
		}
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attachmentType(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}
