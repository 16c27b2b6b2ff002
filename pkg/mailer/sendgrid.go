package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	Sender     string
	SenderName string

	client *sendgrid.Client
}

func NewSendGrid(apiKey, sender, senderName string) *SendGrid {
	return &SendGrid{Sender: sender, SenderName: senderName, client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGrid) Send(ctx context.Context, to, subject, text, html string) error {
	from := mail.NewEmail(s.SenderName, s.Sender)
	msg := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), text, html)

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	resp, err := s.client.SendWithContext(c, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
