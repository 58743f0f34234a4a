package push

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// multicaster is the slice of the firebase messaging client the gateway needs
type multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMGateway sends push notifications through Firebase Cloud Messaging
type FCMGateway struct {
	client multicaster
}

// NewFCMGateway builds a gateway from service account credentials. The private key may
// carry literal "\n" sequences as it usually does when stored in an env var.
func NewFCMGateway(ctx context.Context, projectID, clientEmail, privateKey string) (*FCMGateway, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	return &FCMGateway{client: client}, nil
}

// Send delivers msg to all tokens in one multicast call
func (g *FCMGateway) Send(ctx context.Context, msg Message) (Result, error) {
	res := Result{}
	if len(msg.Tokens) == 0 {
		return res, nil
	}

	sound := msg.Sound
	if sound == "" {
		sound = "default"
	}

	message := &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Data:   stringData(msg.Data),
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: sound,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: sound,
					Badge: msg.Badge,
				},
			},
		},
	}

	response, err := g.client.SendEachForMulticast(ctx, message)
	if err != nil {
		res.Failed = len(msg.Tokens)
		return res, fmt.Errorf("send multicast: %w", err)
	}

	res.Sent = response.SuccessCount
	res.Failed = response.FailureCount
	for i, r := range response.Responses {
		if r.Success {
			continue
		}
		te := TicketError{Token: msg.Tokens[i]}
		if r.Error != nil {
			te.Message = r.Error.Error()
			if messaging.IsUnregistered(r.Error) {
				te.Reason = "DeviceNotRegistered"
			}
		}
		res.Errors = append(res.Errors, te)
	}

	return res, nil
}

// FCM only carries string values in the data block
func stringData(data map[string]interface{}) map[string]string {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprint(v)
	}
	return out
}
