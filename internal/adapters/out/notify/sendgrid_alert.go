// internal/adapters/out/notify/sendgrid_alert.go
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"agrimart/internal/application/usecase"
)

// SendGridAlertNotifier mails cart failure notifications to an ops
// address. Success notifications are ignored; the send itself is
// best-effort and never propagates an error to the cart flow.
type SendGridAlertNotifier struct {
	apiKey string
	from   string
	to     string
}

func NewSendGridAlertNotifier(apiKey, from, to string) *SendGridAlertNotifier {
	return &SendGridAlertNotifier{apiKey: apiKey, from: from, to: to}
}

func (n *SendGridAlertNotifier) Notify(_ context.Context, msg usecase.Notification) {
	if msg.OK {
		return
	}
	if n == nil || n.apiKey == "" || n.from == "" || n.to == "" {
		return
	}

	fromEmail := mail.NewEmail("Agrimart Cart", n.from)
	toEmail := mail.NewEmail("", n.to)
	subject := "cart failure: " + msg.Message
	body := msg.Message

	message := mail.NewSingleEmail(fromEmail, subject, toEmail, body, fmt.Sprintf("<pre>%s</pre>", body))

	client := sendgrid.NewSendClient(n.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[sendgrid_alert] send error (ignored): %v", err)
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("[sendgrid_alert] error status=%d body=%s", resp.StatusCode, resp.Body)
	}
}

var _ usecase.Notifier = (*SendGridAlertNotifier)(nil)
