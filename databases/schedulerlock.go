package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"github.com/linesmerrill/pickup-notify-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockCollectionName = "schedulerLocks"

// SchedulerLockDatabase contains the methods used to coordinate scheduled jobs across instances
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, owner string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock takes the named lock for owner when it is free, expired, or already ours.
// A lock held by another owner surfaces as a duplicate key on the upsert and returns false.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id": name,
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
			{"owner": owner},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"owner":     owner,
			"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
			"updatedAt": primitive.NewDateTimeFromTime(now),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	lock := models.SchedulerLock{}
	err := s.db.Collection(schedulerLockCollectionName).FindOneAndUpdate(ctx, filter, update, opts).Decode(&lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return lock.Owner == owner, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, owner string) error {
	_, err := s.db.Collection(schedulerLockCollectionName).DeleteOne(ctx, bson.M{"_id": name, "owner": owner})
	return err
}
