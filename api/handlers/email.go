package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/models"
	templates "github.com/linesmerrill/pickup-notify-api/templates/html"
)

// Mailer sends one email through the fallback chain
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) bool
}

// Email exported for testing purposes
type Email struct {
	Mailer Mailer
}

// SendEmailHandler sends an email through the provider chain. A false result means
// neither the chain nor the admin notice got through.
func (e Email) SendEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" {
		config.ErrorStatus("invalid email request", http.StatusBadRequest, w, fmt.Errorf("to and subject are required"))
		return
	}

	body := req.HTML
	if body == "" {
		body = templates.RenderGenericEmail(req.Subject, req.Text)
	}

	ctx, cancel := api.WithJobTimeout(r.Context())
	defer cancel()

	if !e.Mailer.SendEmail(ctx, req.To, req.Subject, body) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success": false}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
