package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string `env:"DB_URI" envDefault:"mongodb://127.0.0.1:27017"`
	DatabaseName string `env:"DB_NAME" envDefault:"pickups"`
	BaseURL      string `env:"BASE_URL"`
	Port         string `env:"PORT" envDefault:"8080"`
	Environment  string `env:"ENVIRONMENT" envDefault:"local"`
	JWTSecret    string `env:"JWT_SECRET"`

	Push     PushConfig
	Notify   NotifyConfig
	Reminder ReminderConfig
	Email    EmailConfig
}

// PushConfig selects and configures the push gateway
type PushConfig struct {
	Gateway         string `env:"PUSH_GATEWAY" envDefault:"expo"`
	ExpoURL         string `env:"EXPO_PUSH_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
	ExpoAccessToken string `env:"EXPO_ACCESS_TOKEN"`
	FCMProjectID    string `env:"FCM_PROJECT_ID"`
	FCMClientEmail  string `env:"FCM_CLIENT_EMAIL"`
	FCMPrivateKey   string `env:"FCM_PRIVATE_KEY"`
}

// NotifyConfig holds the per notification type switches
type NotifyConfig struct {
	DisabledTypes []string `env:"NOTIFY_DISABLED_TYPES" envSeparator:"," envDefault:"admin_pickup_accepted"`
}

// ReminderConfig holds the daily driver reminder settings
type ReminderConfig struct {
	Hour         int    `env:"REMINDER_HOUR" envDefault:"20"`
	Timezone     string `env:"REMINDER_TIMEZONE" envDefault:"Local"`
	EmailEnabled bool   `env:"REMINDER_EMAIL_ENABLED" envDefault:"false"`
	UseLock      bool   `env:"REMINDER_USE_LOCK" envDefault:"true"`
}

// EmailConfig holds the outbound email chain settings
type EmailConfig struct {
	Providers       []string      `env:"EMAIL_PROVIDERS" envSeparator:"," envDefault:"sendgrid,mailgun"`
	ProviderTimeout time.Duration `env:"EMAIL_PROVIDER_TIMEOUT" envDefault:"10s"`
	From            string        `env:"EMAIL_FROM" envDefault:"no-reply@pickups.app"`
	FromName        string        `env:"EMAIL_FROM_NAME" envDefault:"Pickups"`
	AdminEmail      string        `env:"ADMIN_EMAIL"`
	AdminRelay      string        `env:"EMAIL_ADMIN_RELAY"`

	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`

	EmailJSURL        string `env:"EMAILJS_URL" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`
	EmailJSServiceID  string `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSUserID     string `env:"EMAILJS_USER_ID"`

	Web3FormsURL string `env:"WEB3FORMS_URL" envDefault:"https://api.web3forms.com/submit"`
	Web3FormsKey string `env:"WEB3FORMS_ACCESS_KEY"`

	FormSubmitURL string `env:"FORMSUBMIT_URL" envDefault:"https://formsubmit.co/ajax"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

// New sets up all config related services
func New() *Config {
	// a missing .env file is normal outside local development
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("ENVIRONMENT"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		zap.S().Errorw("failed to parse config from environment", "error", err)
	}

	return conf
}

// Location returns the reminder timezone, falling back to the process local zone
func (r ReminderConfig) Location() *time.Location {
	if r.Timezone == "" || r.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		zap.S().Warnw("unknown reminder timezone, using local time", "timezone", r.Timezone, "error", err)
		return time.Local
	}
	return loc
}

func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
