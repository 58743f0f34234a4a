package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/models"
)

// NotificationLister reads a recipient's in-app notifications
type NotificationLister interface {
	ListFor(ctx context.Context, recipientID string, limit int64) ([]models.Notification, error)
}

// Notification exported for testing purposes
type Notification struct {
	Lister NotificationLister
}

// GetUserNotificationsHandler returns the user's most recent notifications, newest first
func (n Notification) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !callerMayActFor(r, userID) {
		forbidden(w)
		return
	}

	limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil {
		zap.S().Debugf(fmt.Sprintf("limit not set, using default, err: %v", err))
		limit = 0
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := n.Lister.ListFor(ctx, userID, limit)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Notification{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
