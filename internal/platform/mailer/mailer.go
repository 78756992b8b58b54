package mailer

// Service sends transactional email. Implementations must be safe for
// concurrent use.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}
