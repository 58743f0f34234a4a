package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/models"
)

var (
	// ErrInvalidRegistration is returned when a registration is missing its user or token
	ErrInvalidRegistration = errors.New("userId and token are required")
	// ErrInvalidRole is returned for a role outside vendor, driver and admin
	ErrInvalidRole = errors.New("role must be one of vendor, driver, admin")
)

// TokenLookup resolves device tokens for a recipient or a whole role
type TokenLookup interface {
	TokensFor(ctx context.Context, userID string) ([]models.PushToken, error)
	TokensForRole(ctx context.Context, role string) ([]models.PushToken, error)
}

// Registry stores device push tokens keyed by user
type Registry struct {
	DB  databases.PushTokenDatabase
	now func() time.Time
}

// NewRegistry returns a registry backed by the push token collection
func NewRegistry(db databases.PushTokenDatabase) *Registry {
	return &Registry{DB: db, now: time.Now}
}

// Register stores the token for the user, replacing whatever was stored before.
// The upsert keyed by userId means a user never ends up with two records.
func (r *Registry) Register(ctx context.Context, req models.RegisterPushTokenRequest) error {
	if req.UserID == "" || req.Token == "" {
		return ErrInvalidRegistration
	}
	if !models.ValidRole(req.Role) {
		return ErrInvalidRole
	}

	now := primitive.NewDateTimeFromTime(r.now())
	filter := bson.M{"userId": req.UserID}
	update := bson.M{
		"$set": bson.M{
			"role":      req.Role,
			"token":     req.Token,
			"deviceId":  req.DeviceID,
			"platform":  req.Platform,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.DB.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to register push token for user %s: %w", req.UserID, err)
	}
	return nil
}

// Unregister removes the user's token, typically on logout
func (r *Registry) Unregister(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidRegistration
	}
	if _, err := r.DB.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to remove push token for user %s: %w", userID, err)
	}
	return nil
}

// TokensFor returns every token stored for the user
func (r *Registry) TokensFor(ctx context.Context, userID string) ([]models.PushToken, error) {
	tokens, err := r.DB.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find push tokens for user %s: %w", userID, err)
	}
	return tokens, nil
}

// TokensForRole scans tokens by role, used for the admin broadcast
func (r *Registry) TokensForRole(ctx context.Context, role string) ([]models.PushToken, error) {
	tokens, err := r.DB.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, fmt.Errorf("failed to find push tokens for role %s: %w", role, err)
	}
	return tokens, nil
}
