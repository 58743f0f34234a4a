package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/api/scheduler"
	"github.com/linesmerrill/pickup-notify-api/config"
)

// ReminderTrigger runs the daily pickup reminder on demand
type ReminderTrigger interface {
	TriggerNow(ctx context.Context) (scheduler.RunResult, error)
}

// Reminder exported for testing purposes
type Reminder struct {
	Scheduler ReminderTrigger
}

// TriggerReminderHandler runs the reminder immediately and reports what it did
func (rm Reminder) TriggerReminderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithJobTimeout(r.Context())
	defer cancel()

	result, err := rm.Scheduler.TriggerNow(ctx)
	if err != nil {
		config.ErrorStatus("failed to run pickup reminder", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
