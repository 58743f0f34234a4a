package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/models"
	"github.com/linesmerrill/pickup-notify-api/push"
)

// ErrTypeDisabled is returned by Dispatch when the policy switches the type off for
// the recipient. Nothing is looked up, pushed or stored in that case.
var ErrTypeDisabled = errors.New("notification type disabled")

const (
	// DefaultPushTimeout bounds the token lookup, badge count and gateway call
	DefaultPushTimeout = 10 * time.Second
	// DefaultStoreTimeout bounds the record insert, independent of the caller's deadline
	DefaultStoreTimeout = 10 * time.Second
)

// Message is one logical notification for a single recipient
type Message struct {
	RecipientID   string
	RecipientRole string
	Type          string
	Title         string
	Body          string
	Data          map[string]interface{}
}

// Publisher pushes a stored notification to live in-app connections
type Publisher interface {
	Publish(recipientID string, notification models.Notification)
}

// Dispatcher sends a push to every device of a recipient and always stores the
// in-app record. The push leg is best effort, the record is what the app trusts.
type Dispatcher struct {
	Tokens        TokenLookup
	Notifications databases.NotificationDatabase
	Gateway       push.Gateway
	Policy        Policy
	Live          Publisher

	PushTimeout  time.Duration
	StoreTimeout time.Duration

	now func() time.Time
}

// NewDispatcher wires a dispatcher. live may be nil.
func NewDispatcher(tokens TokenLookup, ndb databases.NotificationDatabase, gateway push.Gateway, policy Policy, live Publisher) *Dispatcher {
	return &Dispatcher{
		Tokens:        tokens,
		Notifications: ndb,
		Gateway:       gateway,
		Policy:        policy,
		Live:          live,
		PushTimeout:   DefaultPushTimeout,
		StoreTimeout:  DefaultStoreTimeout,
		now:           time.Now,
	}
}

// Dispatch delivers msg. Only a disabled type produces an error; push and
// persistence failures are logged and the call still returns nil.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if !d.Policy.Enabled(msg.Type, msg.RecipientRole) {
		zap.S().Debugw("notification type disabled, skipping",
			"type", msg.Type,
			"recipientId", msg.RecipientID,
			"recipientRole", msg.RecipientRole,
		)
		return ErrTypeDisabled
	}

	pushCtx, cancelPush := context.WithTimeout(ctx, orDefault(d.PushTimeout, DefaultPushTimeout))
	d.sendPush(pushCtx, msg)
	cancelPush()

	record := models.Notification{
		ID:            primitive.NewObjectID(),
		RecipientID:   msg.RecipientID,
		RecipientRole: msg.RecipientRole,
		Type:          msg.Type,
		Title:         msg.Title,
		Message:       msg.Body,
		Data:          msg.Data,
		IsRead:        false,
		CreatedAt:     primitive.NewDateTimeFromTime(d.now()),
	}
	// the record outlives a push leg that used up the caller's deadline
	storeCtx, cancelStore := context.WithTimeout(context.WithoutCancel(ctx), orDefault(d.StoreTimeout, DefaultStoreTimeout))
	defer cancelStore()
	if _, err := d.Notifications.InsertOne(storeCtx, record); err != nil {
		zap.S().Errorw("failed to store notification",
			"error", err,
			"type", msg.Type,
			"recipientId", msg.RecipientID,
		)
		return nil
	}

	if d.Live != nil {
		d.Live.Publish(msg.RecipientID, record)
	}
	return nil
}

func orDefault(timeout, fallback time.Duration) time.Duration {
	if timeout <= 0 {
		return fallback
	}
	return timeout
}

func (d *Dispatcher) sendPush(ctx context.Context, msg Message) {
	tokens, err := d.Tokens.TokensFor(ctx, msg.RecipientID)
	if err != nil {
		zap.S().Warnw("failed to look up push tokens, storing in-app notification only",
			"error", err,
			"recipientId", msg.RecipientID,
		)
		return
	}
	if len(tokens) == 0 {
		zap.S().Debugw("no push tokens registered, storing in-app notification only",
			"recipientId", msg.RecipientID,
		)
		return
	}
	if d.Gateway == nil {
		return
	}

	targets := make([]string, 0, len(tokens))
	for _, t := range tokens {
		targets = append(targets, t.Token)
	}

	res, err := d.Gateway.Send(ctx, push.Message{
		Tokens: targets,
		Title:  msg.Title,
		Body:   msg.Body,
		Data:   msg.Data,
		Sound:  "default",
		Badge:  d.badge(ctx, msg.RecipientID),
	})
	if err != nil {
		zap.S().Errorw("push gateway rejected notification",
			"error", err,
			"type", msg.Type,
			"recipientId", msg.RecipientID,
		)
		return
	}
	// TODO: prune tokens whose ticket reason is DeviceNotRegistered once the app re-registers reliably on launch
	for _, te := range res.Errors {
		zap.S().Warnw("push delivery failed for token",
			"recipientId", msg.RecipientID,
			"reason", te.Reason,
			"message", te.Message,
		)
	}
	zap.S().Infow("push notification sent",
		"type", msg.Type,
		"recipientId", msg.RecipientID,
		"sent", res.Sent,
		"failed", res.Failed,
	)
}

// badge is the unread count including the notification being sent
func (d *Dispatcher) badge(ctx context.Context, recipientID string) *int {
	unread, err := d.Notifications.CountDocuments(ctx, bson.M{"recipientId": recipientID, "isRead": false})
	if err != nil {
		return nil
	}
	b := int(unread) + 1
	return &b
}

// ListFor returns the recipient's most recent in-app notifications, newest first
func (d *Dispatcher) ListFor(ctx context.Context, recipientID string, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	return d.Notifications.Find(ctx, bson.M{"recipientId": recipientID}, opts)
}
