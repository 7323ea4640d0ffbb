package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends email through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender with default from and reply-to addresses.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, replyTo: replyTo}
}

// Send hands req to Resend.
// PRE: req has at least one recipient and a subject
// POST: returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		ReplyTo: s.replyTo,
	}
	if req.From != "" {
		params.From = req.From
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
