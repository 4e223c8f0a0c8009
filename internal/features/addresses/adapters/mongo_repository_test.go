package adapters

import (
	"context"
	"testing"

	"storefront-api/internal/features/addresses/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoAddressRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("CreateAssignsID", func(mt *mtest.T) {
		repo := NewMongoAddressRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := &domain.Address{Name: "Asha Rao", City: "Mysuru"}
		require.NoError(t, repo.Create(context.Background(), a))
		assert.Len(t, a.ID, 24)
	})

	mt.Run("GetByID", func(mt *mtest.T) {
		repo := NewMongoAddressRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.addresses", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Asha Rao"},
			{Key: "pincode", Value: "570001"},
		}))

		a, err := repo.GetByID(context.Background(), oid.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", a.Name)
		assert.Equal(t, "570001", a.Pincode)
	})

	mt.Run("GetByIDNotFound", func(mt *mtest.T) {
		repo := NewMongoAddressRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.addresses", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	})
}
