package email

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/linesmerrill/pickup-notify-api/models"
)

// MailgunProvider sends through the Mailgun messages API
type MailgunProvider struct {
	Domain string
	APIKey string
	From   string

	// APIBase overrides the Mailgun API base, used by tests
	APIBase string
}

// NewMailgunProvider creates a Mailgun provider
func NewMailgunProvider(domain, apiKey, from string) *MailgunProvider {
	return &MailgunProvider{Domain: domain, APIKey: apiKey, From: from}
}

// Name identifies the provider in logs
func (m *MailgunProvider) Name() string { return "mailgun" }

// Send queues msg with Mailgun
func (m *MailgunProvider) Send(ctx context.Context, msg models.OutboundEmail) error {
	if m.Domain == "" || m.APIKey == "" {
		return fmt.Errorf("mailgun domain or api key not set")
	}
	mg := mailgun.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		mg.SetAPIBase(m.APIBase)
	}

	// Create message with empty body first, SetHtml assigns the MIME type.
	message := mg.NewMessage(m.From, msg.Subject, "", msg.To)
	message.SetHtml(msg.HTMLBody)

	if _, _, err := mg.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email via mailgun: %w", err)
	}
	return nil
}
