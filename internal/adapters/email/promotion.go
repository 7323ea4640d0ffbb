package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
)

// ErrNoRecipient is returned when the member has no email address on file.
var ErrNoRecipient = errors.New("member has no email address")

// Promotion is the payload stored in the outbox when a waitlisted booking
// is confirmed.
type Promotion struct {
	BookingID string `json:"booking_id"`
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ClassName string `json:"class_name"`
	Date      string `json:"class_date"`
	StartTime string `json:"start_time"`
	Coach     string `json:"coach"`
}

var promotionTmpl = template.Must(template.New("promotion").Parse(`<p>Kia ora {{.Name}},</p>
<p>A spot opened up and you're now <strong>confirmed</strong> for {{.ClassName}} on {{.Date}} at {{.StartTime}}{{if .Coach}} with {{.Coach}}{{end}}.</p>
<p>If you can't make it any more, please cancel so the next person on the waitlist gets the spot.</p>`))

// PromotionEmail renders the notice for p.
func PromotionEmail(p Promotion) (SendRequest, error) {
	if p.Email == "" {
		return SendRequest{}, ErrNoRecipient
	}
	var body bytes.Buffer
	if err := promotionTmpl.Execute(&body, p); err != nil {
		return SendRequest{}, fmt.Errorf("render promotion email: %w", err)
	}
	return SendRequest{
		To:      []string{p.Email},
		Subject: fmt.Sprintf("You're in: %s on %s", p.ClassName, p.Date),
		HTML:    body.String(),
	}, nil
}
