package push

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"go.uber.org/zap"
)

const (
	// ExpoPushURL is the public Expo push endpoint
	ExpoPushURL    = "https://exp.host/--/api/v2/push/send"
	expoBatchLimit = 100
)

// ExpoPushMessage is the payload for Expo's Push API, addressed to many tokens at once
type ExpoPushMessage struct {
	To        []string               `json:"to"`
	Title     string                 `json:"title,omitempty"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Sound     string                 `json:"sound,omitempty"`
	Badge     *int                   `json:"badge,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	ChannelID string                 `json:"channelId,omitempty"`
}

// ExpoPushResponse is the response from Expo's API
type ExpoPushResponse struct {
	Data []ExpoPushTicket `json:"data"`
}

// ExpoPushTicket is the per-token status entry in an Expo response
type ExpoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", etc.
	} `json:"details,omitempty"`
}

// ExpoGateway sends push notifications through the Expo push service
type ExpoGateway struct {
	url         string
	accessToken string
	client      *http.Client
}

// NewExpoGateway creates an Expo gateway. An empty url uses ExpoPushURL.
func NewExpoGateway(url, accessToken string) *ExpoGateway {
	if url == "" {
		url = ExpoPushURL
	}
	return &ExpoGateway{
		url:         url,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Send submits msg to every token. Up to 100 tokens go out in a single request,
// larger sets are split to respect the Expo batch limit.
func (g *ExpoGateway) Send(ctx context.Context, msg Message) (Result, error) {
	res := Result{}
	if len(msg.Tokens) == 0 {
		return res, nil
	}

	sound := msg.Sound
	if sound == "" {
		sound = "default"
	}

	var firstErr error
	for i := 0; i < len(msg.Tokens); i += expoBatchLimit {
		end := i + expoBatchLimit
		if end > len(msg.Tokens) {
			end = len(msg.Tokens)
		}
		batch := msg.Tokens[i:end]

		payload := ExpoPushMessage{
			To:        batch,
			Title:     msg.Title,
			Body:      msg.Body,
			Data:      msg.Data,
			Sound:     sound,
			Badge:     msg.Badge,
			Priority:  "high",
			ChannelID: "default",
		}

		tickets, err := g.sendBatch(ctx, payload)
		if err != nil {
			zap.S().Errorf("Failed to send Expo push batch (tokens %d-%d): %v", i, end-1, err)
			res.Failed += len(batch)
			if firstErr == nil {
				firstErr = err
			}
			// Continue with remaining batches even if one fails
			continue
		}

		for j, ticket := range tickets {
			if ticket.Status == "ok" {
				res.Sent++
				continue
			}
			res.Failed++
			te := TicketError{Message: ticket.Message, Reason: ticket.Details.Error}
			if j < len(batch) {
				te.Token = batch[j]
			}
			res.Errors = append(res.Errors, te)
		}
	}

	return res, firstErr
}

func (g *ExpoGateway) sendBatch(ctx context.Context, payload ExpoPushMessage) ([]ExpoPushTicket, error) {
	var resp ExpoPushResponse
	rb := requests.URL(g.url).
		Client(g.client).
		Accept("application/json").
		Header("Accept-Encoding", "gzip, deflate").
		BodyJSON(&payload).
		ToJSON(&resp)
	if g.accessToken != "" {
		rb.Bearer(g.accessToken)
	}

	if err := rb.Fetch(ctx); err != nil {
		return nil, fmt.Errorf("expo push request failed: %w", err)
	}
	return resp.Data, nil
}
