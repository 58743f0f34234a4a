package email_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/email"
)

func TestNewProvider(t *testing.T) {
	conf := config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}

	tests := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{name: "sendgrid", provider: "sendgrid", want: "sendgrid"},
		{name: "mailgun", provider: "mailgun", want: "mailgun"},
		{name: "smtp", provider: "smtp", want: "smtp"},
		{name: "emailjs relay", provider: "relay:emailjs", want: "relay:emailjs"},
		{name: "web3forms relay", provider: "relay:web3forms", want: "relay:web3forms"},
		{name: "formsubmit relay", provider: "relay:formsubmit", want: "relay:formsubmit"},
		{name: "padded name", provider: " mailgun ", want: "mailgun"},
		{name: "unknown relay", provider: "relay:pigeon", wantErr: true},
		{name: "unknown provider", provider: "postmark", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := email.NewProvider(tt.provider, conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestNewProvider_SMTPRequiresHost(t *testing.T) {
	_, err := email.NewProvider("smtp", config.EmailConfig{})
	assert.EqualError(t, err, "smtp provider requires SMTP_HOST")
}

func TestNewProvidersFromConfig_KeepsOrderAndSkipsUnknown(t *testing.T) {
	conf := config.EmailConfig{Providers: []string{"relay:web3forms", "bogus", "", "sendgrid", "mailgun"}}

	providers := email.NewProvidersFromConfig(conf)

	require.Len(t, providers, 3)
	assert.Equal(t, "relay:web3forms", providers[0].Name())
	assert.Equal(t, "sendgrid", providers[1].Name())
	assert.Equal(t, "mailgun", providers[2].Name())
}

func TestNewChainFromConfig(t *testing.T) {
	conf := config.EmailConfig{
		Providers:  []string{"sendgrid", "mailgun"},
		AdminEmail: "admin@example.com",
		AdminRelay: "relay:emailjs",
	}

	c := email.NewChainFromConfig(conf, nil)

	require.Len(t, c.Providers, 2)
	require.Len(t, c.Terminal, 1)
	assert.Equal(t, "relay:emailjs", c.Terminal[0].Name())
	assert.Equal(t, "admin@example.com", c.AdminEmail)

	conf.AdminRelay = ""
	c = email.NewChainFromConfig(conf, nil)
	assert.Len(t, c.Terminal, 2)
}
