// Package email delivers member notifications through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing email.
type SendRequest struct {
	To      []string
	From    string // overrides the sender's default when set
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
