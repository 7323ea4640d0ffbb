package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestPromotionEmail renders recipient, subject and escaped body.
func TestPromotionEmail(t *testing.T) {
	req, err := PromotionEmail(Promotion{
		Name: "Kai <script>", Email: "kai@example.com",
		ClassName: "Fundamentals", Date: "2024-06-03", StartTime: "18:00", Coach: "Pat",
	})
	if err != nil {
		t.Fatalf("PromotionEmail: %v", err)
	}
	if len(req.To) != 1 || req.To[0] != "kai@example.com" {
		t.Errorf("To = %v", req.To)
	}
	if req.Subject != "You're in: Fundamentals on 2024-06-03" {
		t.Errorf("Subject = %q", req.Subject)
	}
	if strings.Contains(req.HTML, "<script>") {
		t.Error("member name was not escaped")
	}
	if !strings.Contains(req.HTML, "with Pat") {
		t.Errorf("HTML missing coach: %s", req.HTML)
	}
}

// TestPromotionEmail_NoRecipient refuses members without an address.
func TestPromotionEmail_NoRecipient(t *testing.T) {
	if _, err := PromotionEmail(Promotion{Name: "Kai"}); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("err = %v, want ErrNoRecipient", err)
	}
}

// TestNoopSender_RecordsSends keeps requests for inspection.
func TestNoopSender_RecordsSends(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"a@b.c"}, Subject: "hi"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "noop-1" {
		t.Errorf("MessageID = %q, want noop-1", res.MessageID)
	}
	if got := s.Sent(); len(got) != 1 || got[0].Subject != "hi" {
		t.Errorf("Sent = %+v", got)
	}
}
