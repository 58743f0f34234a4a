package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/models"
)

// EventNotifier turns domain events into notifications
type EventNotifier interface {
	NotifyPickupAccepted(ctx context.Context, pickup models.Pickup) error
	NotifyAccountSignup(ctx context.Context, userID, role, name string) error
}

// Events exported for testing purposes
type Events struct {
	PickupDB databases.PickupDatabase
	Notifier EventNotifier
}

// PickupAcceptedHandler notifies the vendor, and admins when enabled, that a driver
// accepted their pickup
func (e Events) PickupAcceptedHandler(w http.ResponseWriter, r *http.Request) {
	var event models.PickupAcceptedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	pID, err := primitive.ObjectIDFromHex(event.PickupID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pickups, err := e.PickupDB.Find(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get pickup", http.StatusInternalServerError, w, err)
		return
	}
	if len(pickups) == 0 {
		config.ErrorStatus("pickup not found", http.StatusNotFound, w, fmt.Errorf("no pickup with id %s", event.PickupID))
		return
	}

	if err := e.Notifier.NotifyPickupAccepted(ctx, pickups[0]); err != nil {
		zap.S().Warnw("pickup accepted notification not sent", "pickupId", event.PickupID, "error", err)
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"success": true}`))
}

// AccountSignupHandler tells every admin device about a new account
func (e Events) AccountSignupHandler(w http.ResponseWriter, r *http.Request) {
	var event models.AccountSignupEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if event.UserID == "" || !models.ValidRole(event.Role) {
		config.ErrorStatus("invalid signup event", http.StatusBadRequest, w, fmt.Errorf("userId and a valid role are required"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := e.Notifier.NotifyAccountSignup(ctx, event.UserID, event.Role, event.Name); err != nil {
		zap.S().Warnw("account signup notification not sent", "userId", event.UserID, "error", err)
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"success": true}`))
}
