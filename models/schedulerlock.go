package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SchedulerLock holds the structure for the schedulerLocks collection in mongo.
// The _id is the job name, so only one instance can hold a job at a time.
type SchedulerLock struct {
	ID        string             `json:"_id" bson:"_id"`
	Owner     string             `json:"owner" bson:"owner"`
	ExpiresAt primitive.DateTime `json:"expiresAt" bson:"expiresAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
