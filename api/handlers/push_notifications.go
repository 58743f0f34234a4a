package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/config"
	"github.com/linesmerrill/pickup-notify-api/models"
	"github.com/linesmerrill/pickup-notify-api/notifications"
)

// TokenRegistrar stores and clears device push tokens
type TokenRegistrar interface {
	Register(ctx context.Context, req models.RegisterPushTokenRequest) error
	Unregister(ctx context.Context, userID string) error
}

// PushToken exported for testing purposes
type PushToken struct {
	Registry TokenRegistrar
}

// RegisterPushTokenHandler saves the caller's device token, replacing any previous one
func (p PushToken) RegisterPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterPushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if !callerMayActFor(r, req.UserID) {
		forbidden(w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err := p.Registry.Register(ctx, req)
	switch {
	case errors.Is(err, notifications.ErrInvalidRegistration), errors.Is(err, notifications.ErrInvalidRole):
		config.ErrorStatus("invalid push token registration", http.StatusBadRequest, w, err)
		return
	case err != nil:
		config.ErrorStatus("failed to register push token", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Debugw("push token registered", "userId", req.UserID, "platform", req.Platform)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// DeletePushTokenHandler clears the user's device token, used on logout
func (p PushToken) DeletePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !callerMayActFor(r, userID) {
		forbidden(w)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.Registry.Unregister(ctx, userID); err != nil {
		config.ErrorStatus("failed to delete push token", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// callerMayActFor is true for the user themselves and for admins
func callerMayActFor(r *http.Request, userID string) bool {
	claims, ok := api.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Subject == userID || claims.Role == models.RoleAdmin
}

func forbidden(w http.ResponseWriter) {
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error": "forbidden"}`))
}
