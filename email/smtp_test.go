package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/linesmerrill/pickup-notify-api/models"
)

func TestSMTPProvider_Send(t *testing.T) {
	p := NewSMTPProvider("smtp.example.com", 587, "user", "pass", "no-reply@pickups.app")
	var got *gomail.Message
	p.dial = func(m *gomail.Message) error {
		got = m
		return nil
	}

	err := p.Send(context.Background(), models.OutboundEmail{To: "driver@example.com", Subject: "Reminder", HTMLBody: "<p>x</p>"})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"driver@example.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"Reminder"}, got.GetHeader("Subject"))
	assert.Equal(t, []string{"no-reply@pickups.app"}, got.GetHeader("From"))
}

func TestSMTPProvider_DialError(t *testing.T) {
	p := NewSMTPProvider("smtp.example.com", 587, "user", "pass", "no-reply@pickups.app")
	p.dial = func(*gomail.Message) error { return errors.New("connection refused") }

	err := p.Send(context.Background(), models.OutboundEmail{To: "driver@example.com"})
	assert.EqualError(t, err, "failed to send email via smtp smtp.example.com: connection refused")
}

func TestSMTPProvider_ContextEnds(t *testing.T) {
	p := NewSMTPProvider("smtp.example.com", 587, "user", "pass", "no-reply@pickups.app")
	release := make(chan struct{})
	defer close(release)
	p.dial = func(*gomail.Message) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Send(ctx, models.OutboundEmail{To: "driver@example.com"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
