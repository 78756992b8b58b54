package mailer

import (
	"fmt"
	"sync/atomic"

	"github.com/naturalmart/shop-api/pkg/logger"
)

// Dev logs messages instead of delivering them. Used when no MailerSend
// API key is configured.
type Dev struct {
	seq atomic.Int64
}

func NewDev() *Dev {
	return &Dev{}
}

func (d *Dev) Send(toEmail, toName, subject, text, _ string) (string, error) {
	id := fmt.Sprintf("dev-%d", d.seq.Add(1))
	logger.Info("dev mailer: would send email",
		"id", id,
		"to", toEmail,
		"to_name", toName,
		"subject", subject,
		"text", text,
	)
	return id, nil
}
