package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/linesmerrill/pickup-notify-api/models"
)

// SendGridProvider sends through the SendGrid v3 mail API
type SendGridProvider struct {
	APIKey   string
	From     string
	FromName string

	// BaseURL overrides the mail send endpoint, used by tests
	BaseURL string
}

// NewSendGridProvider creates a SendGrid provider
func NewSendGridProvider(apiKey, from, fromName string) *SendGridProvider {
	return &SendGridProvider{APIKey: apiKey, From: from, FromName: fromName}
}

// Name identifies the provider in logs
func (s *SendGridProvider) Name() string { return "sendgrid" }

// Send accepts any 2xx status from SendGrid as success
func (s *SendGridProvider) Send(ctx context.Context, msg models.OutboundEmail) error {
	if s.APIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set")
	}
	from := mail.NewEmail(s.FromName, s.From)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, "", msg.HTMLBody)

	client := sendgrid.NewSendClient(s.APIKey)
	if s.BaseURL != "" {
		client.Request.BaseURL = s.BaseURL
	}
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
