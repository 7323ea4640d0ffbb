package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs emails instead of delivering them. It keeps the requests
// it was given so development tooling can inspect them.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records req and logs it.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, req)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// Sent returns a copy of every request seen so far.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
