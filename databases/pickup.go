package databases

// go generate: mockery --name PickupDatabase

import (
	"context"

	"github.com/linesmerrill/pickup-notify-api/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pickupCollectionName = "pickups"

// PickupDatabase contains the read-only methods used against the pickups collection
type PickupDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Pickup, error)
}

type pickupDatabase struct {
	db DatabaseHelper
}

// NewPickupDatabase initializes a new instance of pickup database with the provided db connection
func NewPickupDatabase(db DatabaseHelper) PickupDatabase {
	return &pickupDatabase{
		db: db,
	}
}

func (p *pickupDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Pickup, error) {
	var pickups []models.Pickup
	cur, err := p.db.Collection(pickupCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&pickups)
	if err != nil {
		return nil, err
	}
	return pickups, nil
}
