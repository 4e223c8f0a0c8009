package adapters

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ordersNS = "storefront.orders"

func orderDoc(oid primitive.ObjectID, status domain.OrderStatus) bson.D {
	price, _ := primitive.ParseDecimal128("250")
	amount, _ := primitive.ParseDecimal128("500")
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "merchantOrderId", Value: "ORD_1"},
		{Key: "customerOrderNumber", Value: "MO001"},
		{Key: "addressId", Value: "addr-1"},
		{Key: "amount", Value: amount},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "productName", Value: "Sesame Oil 1L"},
			{Key: "quantity", Value: 2},
			{Key: "unitPrice", Value: price},
			{Key: "itemStatus", Value: "PENDING"},
		}}},
		{Key: "paymentMode", Value: "ONLINE"},
		{Key: "status", Value: string(status)},
	}
}

func TestMongoOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("CreateAssignsID", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		o := newPendingOrder("ORD_1")
		require.NoError(t, repo.Create(context.Background(), o))
		assert.Len(t, o.ID, 24)
	})

	mt.Run("CreateDuplicate", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), newPendingOrder("ORD_1"))
		assert.ErrorIs(t, err, domain.ErrDuplicateOrder)
	})

	mt.Run("NextOrderNumber", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "_id", Value: "orderNumber"}, {Key: "seq", Value: int64(7)}}},
		})

		n, err := repo.NextOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	mt.Run("GetByMerchantOrderID", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, orderDoc(oid, domain.StatusPaymentPending)))

		o, err := repo.GetByMerchantOrderID(context.Background(), "ORD_1")
		require.NoError(t, err)
		assert.Equal(t, oid.Hex(), o.ID)
		assert.Equal(t, "500", o.Amount.String())
		require.Len(t, o.Items, 1)
		assert.Equal(t, "250", o.Items[0].UnitPrice.String())
		assert.Equal(t, domain.StatusPaymentPending, o.Status)
	})

	mt.Run("GetByIDMalformed", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)

		_, err := repo.GetByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	mt.Run("TransitionStatusApplied", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: orderDoc(oid, domain.StatusPaid)}})

		o, err := repo.TransitionStatus(context.Background(), oid.Hex(), domain.StatusPaymentPending, domain.StatusPaid, domain.StatusPatch{PaymentTransactionID: "T-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaid, o.Status)
	})

	mt.Run("TransitionStatusStale", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, bson.D{{Key: "_id", Value: oid}}),
		)

		_, err := repo.TransitionStatus(context.Background(), oid.Hex(), domain.StatusPaymentPending, domain.StatusPaid, domain.StatusPatch{})
		assert.ErrorIs(t, err, domain.ErrStaleState)
	})

	mt.Run("ClaimVerificationMissing", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch),
		)

		now := time.Now()
		_, err := repo.ClaimVerification(context.Background(), "ORD_X", now, now.Add(time.Minute))
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	mt.Run("DeletePending", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(t, repo.DeletePending(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("UpdateShipmentNotFound", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.UpdateShipment(context.Background(), primitive.NewObjectID().Hex(), domain.Shipment{Status: domain.ShipmentCreated}, "SC-1")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	mt.Run("ListDueShipments", func(mt *mtest.T) {
		repo := NewMongoOrderRepository(mt.DB)
		doc := append(orderDoc(primitive.NewObjectID(), domain.StatusPaid), bson.E{Key: "shipment", Value: bson.D{
			{Key: "status", Value: "PENDING"},
			{Key: "attempts", Value: 1},
		}})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ordersNS, mtest.FirstBatch, doc))

		orders, err := repo.ListDueShipments(context.Background(), time.Now(), 10)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, domain.ShipmentPending, orders[0].Shipment.Status)
		assert.Equal(t, 1, orders[0].Shipment.Attempts)
	})
}

func TestOrderDocumentRoundTrip(t *testing.T) {
	o := newPendingOrder("ORD_1")
	o.VerifyLeaseUntil = time.Now().UTC().Truncate(time.Millisecond)
	o.Shipment = &domain.Shipment{Status: domain.ShipmentPending, Attempts: 2}

	doc := toOrderDocument(o)
	assert.Equal(t, database.ToDecimal128(o.Amount), doc.Amount)
	require.NotNil(t, doc.VerifyLeaseUntil)

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.True(t, o.Amount.Equal(back.Amount))
	assert.Equal(t, o.VerifyLeaseUntil, back.VerifyLeaseUntil)
	assert.Equal(t, 2, back.Shipment.Attempts)
}
