package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/linesmerrill/pickup-notify-api/models"
)

// SMTPProvider sends through a plain SMTP relay
type SMTPProvider struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dial func(m *gomail.Message) error
}

// NewSMTPProvider creates an SMTP provider
func NewSMTPProvider(host string, port int, user, password, from string) *SMTPProvider {
	p := &SMTPProvider{Host: host, Port: port, User: user, Password: password, From: from}
	p.dial = func(m *gomail.Message) error {
		return gomail.NewDialer(p.Host, p.Port, p.User, p.Password).DialAndSend(m)
	}
	return p
}

// Name identifies the provider in logs
func (s *SMTPProvider) Name() string { return "smtp" }

// Send dials the relay for each message. gomail has no context support so the
// attempt is abandoned, not interrupted, when ctx ends.
func (s *SMTPProvider) Send(ctx context.Context, msg models.OutboundEmail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	done := make(chan error, 1)
	go func() { done <- s.dial(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email via smtp %s: %w", s.Host, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s abandoned: %w", s.Host, ctx.Err())
	}
}
