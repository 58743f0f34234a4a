package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Pickup statuses
const (
	PickupStatusPending   = "pending"
	PickupStatusAssigned  = "assigned"
	PickupStatusCompleted = "completed"
	PickupStatusCancelled = "cancelled"
)

// Pickup holds the fields of the pickups collection this service reads.
// The collection is owned elsewhere and is never written from here.
type Pickup struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VendorID      string             `json:"vendorId" bson:"vendorId"`
	DriverID      string             `json:"driverId,omitempty" bson:"driverId,omitempty"`
	DriverEmail   string             `json:"driverEmail,omitempty" bson:"driverEmail,omitempty"`
	Status        string             `json:"status" bson:"status"`
	Address       string             `json:"address" bson:"address"`
	ScheduledDate primitive.DateTime `json:"scheduledDate" bson:"scheduledDate"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// PickupAcceptedEvent is posted by the pickup service when a driver accepts a pickup
type PickupAcceptedEvent struct {
	PickupID string `json:"pickupId"`
}

// AccountSignupEvent is posted by the account service when a new user signs up
type AccountSignupEvent struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}
