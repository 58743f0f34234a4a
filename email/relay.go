package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/carlmjohnson/requests"

	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/models"
)

// PayloadBuilder turns an outbound email into the JSON body a relay expects
type PayloadBuilder func(msg models.OutboundEmail) interface{}

// SuccessCheck decides whether a relay response means the email was accepted
type SuccessCheck func(res *http.Response) error

// HTTPRelay is a form-to-email style JSON endpoint: where to post, what to post and
// how to read the answer. Without a success check any 2xx response counts as accepted.
type HTTPRelay struct {
	name     string
	endpoint func(msg models.OutboundEmail) string
	payload  PayloadBuilder
	success  SuccessCheck
	headers  map[string]string
	client   *http.Client
}

// NewHTTPRelay describes a relay that always posts to the same endpoint
func NewHTTPRelay(name, endpoint string, payload PayloadBuilder) *HTTPRelay {
	return &HTTPRelay{
		name:     name,
		endpoint: func(models.OutboundEmail) string { return endpoint },
		payload:  payload,
		headers:  map[string]string{},
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name identifies the provider in logs
func (r *HTTPRelay) Name() string { return "relay:" + r.name }

// WithHeader adds a static request header
func (r *HTTPRelay) WithHeader(key, value string) *HTTPRelay {
	r.headers[key] = value
	return r
}

// WithSuccess replaces the 2xx check with check
func (r *HTTPRelay) WithSuccess(check SuccessCheck) *HTTPRelay {
	r.success = check
	return r
}

// Send posts the payload as JSON
func (r *HTTPRelay) Send(ctx context.Context, msg models.OutboundEmail) error {
	rb := requests.URL(r.endpoint(msg)).
		Client(r.client).
		Accept("application/json").
		BodyJSON(r.payload(msg))
	for k, v := range r.headers {
		rb = rb.Header(k, v)
	}
	if r.success != nil {
		rb = rb.AddValidator(requests.ResponseHandler(r.success))
	}
	if err := rb.Fetch(ctx); err != nil {
		return fmt.Errorf("relay %s rejected email: %w", r.name, err)
	}
	return nil
}

// JSONSuccess accepts a 2xx response whose body carries "success": true (or "true").
// Form relays answer 200 with success false when they refuse a submission.
func JSONSuccess(res *http.Response) error {
	if err := requests.DefaultValidator(res); err != nil {
		return err
	}
	var body struct {
		Success interface{} `json:"success"`
		Message string      `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("unreadable relay response: %w", err)
	}
	switch v := body.Success.(type) {
	case bool:
		if v {
			return nil
		}
	case string:
		if v == "true" {
			return nil
		}
	}
	if body.Message != "" {
		return errors.New(body.Message)
	}
	return errors.New("relay reported success false")
}

// EmailJSPayload matches the EmailJS REST send API
func EmailJSPayload(serviceID, templateID, userID string) PayloadBuilder {
	return func(msg models.OutboundEmail) interface{} {
		return map[string]interface{}{
			"service_id":  serviceID,
			"template_id": templateID,
			"user_id":     userID,
			"template_params": map[string]string{
				"to_email":     msg.To,
				"subject":      msg.Subject,
				"message_html": msg.HTMLBody,
			},
		}
	}
}

// Web3FormsPayload matches the Web3Forms submit API
func Web3FormsPayload(accessKey, fromName string) PayloadBuilder {
	return func(msg models.OutboundEmail) interface{} {
		return map[string]string{
			"access_key": accessKey,
			"from_name":  fromName,
			"email":      msg.To,
			"subject":    msg.Subject,
			"message":    msg.HTMLBody,
		}
	}
}

// FormSubmitPayload matches the FormSubmit ajax API. The recipient is part of the URL.
func FormSubmitPayload() PayloadBuilder {
	return func(msg models.OutboundEmail) interface{} {
		return map[string]string{
			"_subject":  msg.Subject,
			"_template": "box",
			"message":   msg.HTMLBody,
		}
	}
}

// NewEmailJSRelay builds the emailjs relay from config
func NewEmailJSRelay(conf config.EmailConfig) *HTTPRelay {
	return NewHTTPRelay("emailjs", conf.EmailJSURL,
		EmailJSPayload(conf.EmailJSServiceID, conf.EmailJSTemplateID, conf.EmailJSUserID))
}

// NewWeb3FormsRelay builds the web3forms relay from config
func NewWeb3FormsRelay(conf config.EmailConfig) *HTTPRelay {
	return NewHTTPRelay("web3forms", conf.Web3FormsURL, Web3FormsPayload(conf.Web3FormsKey, conf.FromName)).
		WithSuccess(JSONSuccess)
}

// NewFormSubmitRelay builds the formsubmit relay, posting to <base>/<recipient>
func NewFormSubmitRelay(conf config.EmailConfig) *HTTPRelay {
	r := NewHTTPRelay("formsubmit", conf.FormSubmitURL, FormSubmitPayload()).WithSuccess(JSONSuccess)
	base := conf.FormSubmitURL
	r.endpoint = func(msg models.OutboundEmail) string {
		return base + "/" + url.PathEscape(msg.To)
	}
	return r
}
