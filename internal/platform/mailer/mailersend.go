package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
)

const sendTimeout = 10 * time.Second

// MailerSend delivers email through the MailerSend API.
type MailerSend struct {
	client    *mailersend.Mailersend
	fromEmail string
	fromName  string
}

func NewMailerSend(apiKey, fromEmail, fromName string) *MailerSend {
	return &MailerSend{
		client:    mailersend.NewMailersend(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m *MailerSend) Send(toEmail, toName, subject, text, html string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Email: m.fromEmail, Name: m.fromName})
	message.SetRecipients([]mailersend.Recipient{{Email: toEmail, Name: toName}})
	message.SetSubject(subject)
	message.SetText(text)
	if html != "" {
		message.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("mailersend send: %w", err)
	}

	return res.Header.Get("X-Message-Id"), nil
}
