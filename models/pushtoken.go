package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Recipient roles
const (
	RoleVendor = "vendor"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known recipient roles
func ValidRole(role string) bool {
	switch role {
	case RoleVendor, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// PushToken holds the structure for the pushTokens collection in mongo.
// There is at most one document per userId, a new registration overwrites the old one.
type PushToken struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	Role      string             `json:"role" bson:"role"`
	Token     string             `json:"token" bson:"token"`       // Expo push token (e.g., "ExponentPushToken[xxx]") or FCM token
	DeviceID  string             `json:"deviceId" bson:"deviceId"`
	Platform  string             `json:"platform" bson:"platform"` // "ios" or "android"
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// RegisterPushTokenRequest is the request body for registering a device token
type RegisterPushTokenRequest struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	Token    string `json:"token"`
	DeviceID string `json:"deviceId"`
	Platform string `json:"platform"`
}
