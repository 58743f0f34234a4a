package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	defer os.Unsetenv("DB_URI")
	defer os.Unsetenv("DB_NAME")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	conf := New()

	assert.Equal(t, 20, conf.Reminder.Hour)
	assert.Equal(t, []string{"admin_pickup_accepted"}, conf.Notify.DisabledTypes)
	assert.Equal(t, []string{"sendgrid", "mailgun"}, conf.Email.Providers)
	assert.Equal(t, 10*time.Second, conf.Email.ProviderTimeout)
	assert.Equal(t, "expo", conf.Push.Gateway)
}

func TestNewReadsLists(t *testing.T) {
	os.Setenv("EMAIL_PROVIDERS", "relay:emailjs,sendgrid,smtp")
	defer os.Unsetenv("EMAIL_PROVIDERS")

	conf := New()

	assert.Equal(t, []string{"relay:emailjs", "sendgrid", "smtp"}, conf.Email.Providers)
}

func TestReminderLocation(t *testing.T) {
	assert.Equal(t, time.Local, ReminderConfig{Timezone: "Local"}.Location())
	assert.Equal(t, time.Local, ReminderConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", ReminderConfig{Timezone: "UTC"}.Location().String())
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "error it borked, bad request"}`, rr.Body.String())
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
