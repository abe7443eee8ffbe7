// Package sendingtest provides an in-memory Sender for handler tests.
package sendingtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redoublet/formrelay/internal/service/sending"
)

// Recorder is a sending.Sender that keeps every message it is given.
// Err, when set, is returned from every Send. FailOn makes only the
// n-th call (1-based) fail with Err.
type Recorder struct {
	Err    error
	FailOn int

	mu       sync.Mutex
	calls    int
	messages []*sending.Message
}

// Send records msg and returns a sequential message id.
func (r *Recorder) Send(ctx context.Context, msg *sending.Message) (*sending.SendResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.Err != nil && (r.FailOn == 0 || r.FailOn == r.calls) {
		return nil, r.Err
	}
	r.messages = append(r.messages, msg)
	return &sending.SendResult{
		MessageID: fmt.Sprintf("msg-%d", len(r.messages)),
		Provider:  "recorder",
		SentAt:    time.Now(),
	}, nil
}

// Messages returns the accepted messages in send order.
func (r *Recorder) Messages() []*sending.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*sending.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Calls returns how many times Send was invoked, failures included.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
