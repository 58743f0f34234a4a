package notifications

import (
	"strings"

	"github.com/linesmerrill/pickup-notify-api/models"
)

// adminTypes are the only notification types an admin recipient can receive.
// admin_pickup_accepted is listed so the type switch alone decides it; it ships
// disabled, which leaves admins with account signups only.
var adminTypes = map[string]bool{
	models.NotificationAccountSignup:       true,
	models.NotificationAdminPickupAccepted: true,
}

// Policy switches notification types on and off
type Policy struct {
	disabled map[string]bool
}

// NewPolicy builds a policy with the given types turned off
func NewPolicy(disabledTypes []string) Policy {
	p := Policy{disabled: make(map[string]bool)}
	for _, t := range disabledTypes {
		t = strings.TrimSpace(t)
		if t != "" {
			p.disabled[t] = true
		}
	}
	return p
}

// Enabled reports whether a notification of this type may go to a recipient with this role
func (p Policy) Enabled(notificationType, recipientRole string) bool {
	if p.disabled[notificationType] {
		return false
	}
	if recipientRole == models.RoleAdmin && !adminTypes[notificationType] {
		return false
	}
	return true
}

// TypeEnabled reports whether the type is switched on regardless of recipient
func (p Policy) TypeEnabled(notificationType string) bool {
	return !p.disabled[notificationType]
}
