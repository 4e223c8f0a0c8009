package adapters

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/features/contacts/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoContactRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("Create", func(mt *mtest.T) {
		repo := NewMongoContactRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &domain.Contact{Name: "Asha", Message: "hi", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(context.Background(), c))
		assert.Len(t, c.ID, 24)
	})

	mt.Run("List", func(mt *mtest.T) {
		repo := NewMongoContactRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storefront.contacts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Asha"},
			{Key: "message", Value: "Do you ship to Goa?"},
		}))

		contacts, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, "Do you ship to Goa?", contacts[0].Message)
	})

	mt.Run("DeleteMissing", func(mt *mtest.T) {
		repo := NewMongoContactRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, domain.ErrContactNotFound)
	})
}

func TestMemoryContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryContactRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &domain.Contact{Name: "A", Message: "first", CreatedAt: base}
	newer := &domain.Contact{Name: "B", Message: "second", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), domain.ErrContactNotFound)
}
