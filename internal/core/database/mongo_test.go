package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNextSequence(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Success", func(mt *mtest.T) {
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: "orderNumber"}, {Key: "seq", Value: int64(7)}}},
		})

		seq, err := NextSequence(context.Background(), mt.DB, "orderNumber")
		require.NoError(t, err)
		assert.Equal(t, int64(7), seq)
	})

	mt.Run("CommandError", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "duplicate key",
		}))

		_, err := NextSequence(context.Background(), mt.DB, "orderNumber")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "increment counter orderNumber")
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(mongo.ErrNoDocuments))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsDuplicateKey(nil))
}
