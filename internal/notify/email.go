package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailSink delivers reminder mail over SMTP.
type EmailSink struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSink(host string, port int, user, password, from string) *EmailSink {
	return &EmailSink{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *EmailSink) Sender() string { return s.from }

// SendEmail sends a plain-text message. The SMTP dial has no context hook,
// so the deadline is enforced around the whole send.
func (s *EmailSink) SendEmail(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}
