package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/pickup-notify-api/databases"
	"github.com/linesmerrill/pickup-notify-api/databases/mocks"
	"github.com/linesmerrill/pickup-notify-api/models"
)

func TestNotificationDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	insertResult := &mocks.InsertOneResultHelper{}

	n := models.Notification{RecipientID: "u1", Type: models.NotificationPickupAccepted}
	collectionHelper.On("InsertOne", mock.Anything, n).Return(insertResult, nil)
	dbHelper.On("Collection", "notifications").Return(collectionHelper)

	res, err := databases.NewNotificationDatabase(dbHelper).InsertOne(context.Background(), n)

	assert.NoError(t, err)
	assert.Equal(t, insertResult, res)
}

func TestNotificationDatabase_FindPassesOptions(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	opts := options.Find().SetLimit(5)
	cursorHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Notification)
		*arg = []models.Notification{{RecipientID: "u1", Title: "hello"}}
	})
	collectionHelper.On("Find", mock.Anything, bson.M{"recipientId": "u1"}, opts).Return(cursorHelper, nil)
	dbHelper.On("Collection", "notifications").Return(collectionHelper)

	got, err := databases.NewNotificationDatabase(dbHelper).Find(context.Background(), bson.M{"recipientId": "u1"}, opts)

	assert.NoError(t, err)
	assert.Equal(t, []models.Notification{{RecipientID: "u1", Title: "hello"}}, got)
}

func TestNotificationDatabase_FindError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "notifications").Return(collectionHelper)

	got, err := databases.NewNotificationDatabase(dbHelper).Find(context.Background(), bson.M{})

	assert.Nil(t, got)
	assert.EqualError(t, err, "mocked-error")
}

func TestNotificationDatabase_CountDocuments(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	filter := bson.M{"recipientId": "u1", "isRead": false}
	collectionHelper.On("CountDocuments", mock.Anything, filter).Return(int64(4), nil)
	dbHelper.On("Collection", "notifications").Return(collectionHelper)

	count, err := databases.NewNotificationDatabase(dbHelper).CountDocuments(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
