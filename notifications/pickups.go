package notifications

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/linesmerrill/pickup-notify-api/models"
)

// NotifyPickupAccepted tells the vendor a driver took their pickup. The matching admin
// notification goes through the same path and is dropped by the policy by default.
func (d *Dispatcher) NotifyPickupAccepted(ctx context.Context, pickup models.Pickup) error {
	err := d.Dispatch(ctx, Message{
		RecipientID:   pickup.VendorID,
		RecipientRole: models.RoleVendor,
		Type:          models.NotificationPickupAccepted,
		Title:         "Pickup Accepted",
		Body:          fmt.Sprintf("A driver has accepted your pickup at %s.", pickup.Address),
		Data: map[string]interface{}{
			"type":     models.NotificationPickupAccepted,
			"pickupId": pickup.ID.Hex(),
			"driverId": pickup.DriverID,
		},
	})
	if err != nil && !errors.Is(err, ErrTypeDisabled) {
		return err
	}

	return d.NotifyAdmins(ctx, models.NotificationAdminPickupAccepted,
		"Pickup Accepted",
		fmt.Sprintf("Pickup at %s was accepted by driver %s.", pickup.Address, pickup.DriverID),
		map[string]interface{}{
			"type":     models.NotificationAdminPickupAccepted,
			"pickupId": pickup.ID.Hex(),
		},
	)
}

// NotifyDriverPickupReminder reminds a driver of tomorrow's assigned pickups. A single
// pickup names its address; several only give the count to keep the payload small.
func (d *Dispatcher) NotifyDriverPickupReminder(ctx context.Context, driverID string, pickups []models.Pickup) error {
	if driverID == "" || len(pickups) == 0 {
		return nil
	}

	data := map[string]interface{}{
		"type":  models.NotificationPickupReminder,
		"count": len(pickups),
	}
	var body string
	if len(pickups) == 1 {
		body = fmt.Sprintf("Reminder: you have a pickup tomorrow at %s.", pickups[0].Address)
		data["pickupId"] = pickups[0].ID.Hex()
	} else {
		body = fmt.Sprintf("Reminder: you have %d pickups scheduled for tomorrow.", len(pickups))
	}

	return d.Dispatch(ctx, Message{
		RecipientID:   driverID,
		RecipientRole: models.RoleDriver,
		Type:          models.NotificationPickupReminder,
		Title:         "Pickup Reminder",
		Body:          body,
		Data:          data,
	})
}

// NotifyAdmins dispatches one notification per registered admin. A disabled type
// returns before the role scan.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, notificationType, title, body string, data map[string]interface{}) error {
	if !d.Policy.Enabled(notificationType, models.RoleAdmin) {
		return nil
	}

	admins, err := d.Tokens.TokensForRole(ctx, models.RoleAdmin)
	if err != nil {
		zap.S().Errorw("failed to find admins to notify", "error", err, "type", notificationType)
		return err
	}

	seen := make(map[string]bool)
	for _, admin := range admins {
		if seen[admin.UserID] {
			continue
		}
		seen[admin.UserID] = true
		if err := d.Dispatch(ctx, Message{
			RecipientID:   admin.UserID,
			RecipientRole: models.RoleAdmin,
			Type:          notificationType,
			Title:         title,
			Body:          body,
			Data:          data,
		}); err != nil && !errors.Is(err, ErrTypeDisabled) {
			return err
		}
	}
	return nil
}

// NotifyAccountSignup tells every admin a new account was created
func (d *Dispatcher) NotifyAccountSignup(ctx context.Context, userID, role, name string) error {
	return d.NotifyAdmins(ctx, models.NotificationAccountSignup,
		"New Account",
		fmt.Sprintf("%s signed up as a %s.", name, role),
		map[string]interface{}{
			"type":   models.NotificationAccountSignup,
			"userId": userID,
			"role":   role,
		},
	)
}
