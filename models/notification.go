package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification types
const (
	NotificationPickupAccepted      = "pickup_accepted"
	NotificationPickupReminder      = "pickup_reminder"
	NotificationAdminPickupAccepted = "admin_pickup_accepted"
	NotificationPickupCompleted     = "pickup_completed"
	NotificationPickupCancelled     = "pickup_cancelled"
	NotificationAccountSignup       = "account_signup"
)

// Notification holds the structure for the notifications collection in mongo.
// Documents are only ever inserted by the dispatcher; isRead is owned by the app.
type Notification struct {
	ID            primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	RecipientID   string                 `json:"recipientId" bson:"recipientId"`
	RecipientRole string                 `json:"recipientRole" bson:"recipientRole"`
	Type          string                 `json:"type" bson:"type"`
	Title         string                 `json:"title" bson:"title"`
	Message       string                 `json:"message" bson:"message"`
	Data          map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	IsRead        bool                   `json:"isRead" bson:"isRead"`
	CreatedAt     primitive.DateTime     `json:"createdAt" bson:"createdAt"`
}
