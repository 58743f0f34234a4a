package email

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/config"
)

// NewProvider builds one provider by its configured name: sendgrid, mailgun, smtp or
// relay:<emailjs|web3forms|formsubmit>
func NewProvider(name string, conf config.EmailConfig) (Provider, error) {
	switch name = strings.TrimSpace(name); {
	case name == "sendgrid":
		return NewSendGridProvider(conf.SendGridAPIKey, conf.From, conf.FromName), nil
	case name == "mailgun":
		return NewMailgunProvider(conf.MailgunDomain, conf.MailgunAPIKey, fmt.Sprintf("%s <%s>", conf.FromName, conf.From)), nil
	case name == "smtp":
		if conf.SMTPHost == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST")
		}
		return NewSMTPProvider(conf.SMTPHost, conf.SMTPPort, conf.SMTPUser, conf.SMTPPassword, conf.From), nil
	case strings.HasPrefix(name, "relay:"):
		switch relay := strings.TrimPrefix(name, "relay:"); relay {
		case "emailjs":
			return NewEmailJSRelay(conf), nil
		case "web3forms":
			return NewWeb3FormsRelay(conf), nil
		case "formsubmit":
			return NewFormSubmitRelay(conf), nil
		default:
			return nil, fmt.Errorf("unknown email relay %q", relay)
		}
	default:
		return nil, fmt.Errorf("unknown email provider %q", name)
	}
}

// NewProvidersFromConfig builds the chain providers in configured order. Unknown or
// unusable entries are logged and left out.
func NewProvidersFromConfig(conf config.EmailConfig) []Provider {
	providers := make([]Provider, 0, len(conf.Providers))
	for _, name := range conf.Providers {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := NewProvider(name, conf)
		if err != nil {
			zap.S().Warnw("skipping email provider", "provider", name, "error", err)
			continue
		}
		providers = append(providers, p)
	}
	return providers
}

// NewChainFromConfig builds the fallback chain with its admin notice relay
func NewChainFromConfig(conf config.EmailConfig, log *zap.SugaredLogger) *Chain {
	var terminal Provider
	if conf.AdminRelay != "" {
		p, err := NewProvider(conf.AdminRelay, conf)
		if err != nil {
			zap.S().Warnw("invalid admin relay, reusing chain providers", "relay", conf.AdminRelay, "error", err)
		} else {
			terminal = p
		}
	}
	return NewChain(NewProvidersFromConfig(conf), terminal, conf.AdminEmail, conf.ProviderTimeout, log)
}
