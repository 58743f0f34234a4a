package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/models"
	templates "github.com/linesmerrill/pickup-notify-api/templates/html"
)

// ErrChainExhausted is returned by FirstSuccess when every provider failed
var ErrChainExhausted = errors.New("all email providers failed")

// Provider sends one email. A nil error means the provider accepted the message,
// which is not a delivery guarantee.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg models.OutboundEmail) error
}

// FirstSuccess tries providers in order and stops at the first one that accepts msg.
// It returns the name of that provider. Every provider is tried at most once.
func FirstSuccess(ctx context.Context, providers []Provider, msg models.OutboundEmail) (string, error) {
	var failures []string
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrChainExhausted, err)
		}
		err := p.Send(ctx, msg)
		if err == nil {
			return p.Name(), nil
		}
		zap.S().Warnw("email provider failed, trying next",
			"provider", p.Name(),
			"to", msg.To,
			"error", err,
		)
		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
	}
	if len(failures) == 0 {
		return "", fmt.Errorf("%w: no providers configured", ErrChainExhausted)
	}
	return "", fmt.Errorf("%w: %s", ErrChainExhausted, strings.Join(failures, "; "))
}

// Chain is the ordered outbound email fallback chain. When every provider refuses a
// message, a notice is sent to the admin address through the terminal providers.
type Chain struct {
	Providers  []Provider
	Terminal   []Provider
	AdminEmail string
	Timeout    time.Duration

	log *zap.SugaredLogger
}

// NewChain builds a chain. A nil terminal reuses providers for the admin notice.
func NewChain(providers []Provider, terminal Provider, adminEmail string, timeout time.Duration, log *zap.SugaredLogger) *Chain {
	if log == nil {
		log = zap.S()
	}
	c := &Chain{
		Providers:  providers,
		Terminal:   providers,
		AdminEmail: adminEmail,
		Timeout:    timeout,
		log:        log,
	}
	if terminal != nil {
		c.Terminal = []Provider{terminal}
	}
	return c
}

// SendEmail reports whether some provider accepted the email. When none did, the
// result of the admin notice is returned instead.
func (c *Chain) SendEmail(ctx context.Context, to, subject, html string) bool {
	msg := models.OutboundEmail{To: to, Subject: subject, HTMLBody: html}

	name, err := FirstSuccess(ctx, c.bounded(c.Providers), msg)
	if err == nil {
		c.log.Infow("email sent", "provider", name, "to", to, "subject", subject)
		return true
	}
	c.log.Errorw("email chain exhausted, notifying admin", "to", to, "subject", subject, "error", err)

	return c.notifyAdmin(ctx, msg)
}

func (c *Chain) notifyAdmin(ctx context.Context, original models.OutboundEmail) bool {
	if c.AdminEmail == "" {
		c.log.Errorw("no admin email configured, dropping message", "to", original.To, "subject", original.Subject)
		return false
	}
	notice := models.OutboundEmail{
		To:       c.AdminEmail,
		Subject:  fmt.Sprintf("[Undelivered] %s", original.Subject),
		HTMLBody: templates.RenderAdminFallbackEmail(original.To, original.Subject, original.HTMLBody),
	}

	name, err := FirstSuccess(ctx, c.bounded(c.Terminal), notice)
	if err != nil {
		c.log.Errorw("admin fallback notice failed", "admin", c.AdminEmail, "error", err)
		return false
	}
	c.log.Infow("admin fallback notice sent", "provider", name, "admin", c.AdminEmail)
	return true
}

func (c *Chain) bounded(providers []Provider) []Provider {
	if c.Timeout <= 0 {
		return providers
	}
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		out = append(out, timeoutProvider{Provider: p, timeout: c.Timeout})
	}
	return out
}

// timeoutProvider caps a single send attempt
type timeoutProvider struct {
	Provider
	timeout time.Duration
}

func (t timeoutProvider) Send(ctx context.Context, msg models.OutboundEmail) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Send(ctx, msg)
}
