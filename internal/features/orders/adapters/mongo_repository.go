package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/orders/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderNumberCounter = "orderNumber"

// MongoOrderRepository implements ports.OrderRepository on the orders collection.
// Status changes are single-document conditional updates keyed on the expected
// current status.
type MongoOrderRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a repository over db.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{db: db, coll: db.Collection(database.OrdersCollection)}
}

func (r *MongoOrderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	return database.NextSequence(ctx, r.db, orderNumberCounter)
}

func (r *MongoOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	o.UpdatedAt = o.CreatedAt

	doc := toOrderDocument(o)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoOrderRepository) GetByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"merchantOrderId": merchantOrderID})
}

func (r *MongoOrderRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentMode != "" {
		query["paymentMode"] = filter.PaymentMode
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, opts)
}

func (r *MongoOrderRepository) DeletePending(ctx context.Context, id string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "status": domain.StatusPaymentPending})
	if err != nil {
		return fmt.Errorf("delete pending order: %w", err)
	}
	if res.DeletedCount == 1 {
		return nil
	}
	return r.missOrStale(ctx, bson.M{"_id": oid})
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *MongoOrderRepository) ClaimVerification(ctx context.Context, merchantOrderID string, now, leaseUntil time.Time) (*domain.Order, error) {
	filter := bson.M{
		"merchantOrderId": merchantOrderID,
		"status":          domain.StatusPaymentPending,
		"$or": bson.A{
			bson.M{"verifyLeaseUntil": nil},
			bson.M{"verifyLeaseUntil": bson.M{"$lte": now}},
		},
	}
	update := bson.M{"$set": bson.M{"verifyLeaseUntil": leaseUntil, "updatedAt": time.Now().UTC()}}

	o, err := r.findOneAndUpdate(ctx, filter, update)
	if database.IsNotFound(err) {
		return nil, r.missOrStale(ctx, bson.M{"merchantOrderId": merchantOrderID})
	}
	return o, err
}

func (r *MongoOrderRepository) ReleaseVerification(ctx context.Context, merchantOrderID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"merchantOrderId": merchantOrderID},
		bson.M{"$unset": bson.M{"verifyLeaseUntil": ""}},
	)
	if err != nil {
		return fmt.Errorf("release verification lease: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, patch domain.StatusPatch) (*domain.Order, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	set := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	if patch.PaymentTransactionID != "" {
		set["paymentTransactionId"] = patch.PaymentTransactionID
	}
	if patch.FailureReason != "" {
		set["failureReason"] = patch.FailureReason
	}
	if patch.Shipment != nil {
		set["shipment"] = toShipmentDocument(patch.Shipment)
	}

	o, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": from},
		bson.M{"$set": set, "$unset": bson.M{"verifyLeaseUntil": ""}},
	)
	if database.IsNotFound(err) {
		return nil, r.missOrStale(ctx, bson.M{"_id": oid})
	}
	return o, err
}

func (r *MongoOrderRepository) UpdateShipment(ctx context.Context, id string, shipment domain.Shipment, reference string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	set := bson.M{"shipment": toShipmentDocument(&shipment), "updatedAt": time.Now().UTC()}
	if reference != "" {
		set["shippingReference"] = reference
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *MongoOrderRepository) UpdateItemStatus(ctx context.Context, id string, index int, status domain.ItemStatus) (*domain.Order, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if index < 0 {
		return nil, domain.ErrItemNotFound
	}

	path := fmt.Sprintf("items.%d", index)
	o, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, path: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{path + ".itemStatus": status, "updatedAt": time.Now().UTC()}},
	)
	if database.IsNotFound(err) {
		if _, err := r.findOne(ctx, bson.M{"_id": oid}); err != nil {
			return nil, err
		}
		return nil, domain.ErrItemNotFound
	}
	return o, err
}

func (r *MongoOrderRepository) ListDueShipments(ctx context.Context, now time.Time, limit int) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shipment.nextAttemptAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{
		"status":                 bson.M{"$in": bson.A{domain.StatusPaid, domain.StatusConfirmed}},
		"shipment.status":        domain.ShipmentPending,
		"shipment.nextAttemptAt": bson.M{"$lte": now},
	}, opts)
}

func (r *MongoOrderRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{
		"status":      domain.StatusPaymentPending,
		"paymentMode": domain.PaymentOnline,
		"createdAt":   bson.M{"$lt": cutoff},
	}, opts)
}

// missOrStale classifies a conditional write that matched nothing.
func (r *MongoOrderRepository) missOrStale(ctx context.Context, filter bson.M) error {
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if database.IsNotFound(err) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("classify rejected update: %w", err)
	}
	return domain.ErrStaleState
}

func (r *MongoOrderRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.Order, error) {
	var doc orderDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update order: %w", err)
	}
	return doc.toDomain()
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain()
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// orderDocument is the BSON shape of an order.
type orderDocument struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty"`
	MerchantOrderID      string               `bson:"merchantOrderId"`
	CustomerOrderNumber  string               `bson:"customerOrderNumber"`
	AddressID            string               `bson:"addressId"`
	Amount               primitive.Decimal128 `bson:"amount"`
	Items                []itemDocument       `bson:"items"`
	PaymentMode          string               `bson:"paymentMode"`
	Status               string               `bson:"status"`
	PaymentTransactionID string               `bson:"paymentTransactionId,omitempty"`
	ShippingReference    string               `bson:"shippingReference,omitempty"`
	FailureReason        string               `bson:"failureReason,omitempty"`
	Shipment             *shipmentDocument    `bson:"shipment,omitempty"`
	VerifyLeaseUntil     *time.Time           `bson:"verifyLeaseUntil,omitempty"`
	CreatedAt            time.Time            `bson:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt"`
}

type itemDocument struct {
	ProductName  string               `bson:"productName"`
	ProductImage string               `bson:"productImage,omitempty"`
	Quantity     int                  `bson:"quantity"`
	UnitPrice    primitive.Decimal128 `bson:"unitPrice"`
	ItemStatus   string               `bson:"itemStatus"`
}

type shipmentDocument struct {
	Status        string    `bson:"status"`
	Attempts      int       `bson:"attempts"`
	NextAttemptAt time.Time `bson:"nextAttemptAt,omitempty"`
	LastError     string    `bson:"lastError,omitempty"`
}

func toShipmentDocument(s *domain.Shipment) *shipmentDocument {
	return &shipmentDocument{
		Status:        string(s.Status),
		Attempts:      s.Attempts,
		NextAttemptAt: s.NextAttemptAt,
		LastError:     s.LastError,
	}
}

func toOrderDocument(o *domain.Order) orderDocument {
	items := make([]itemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemDocument{
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			UnitPrice:    database.ToDecimal128(it.UnitPrice),
			ItemStatus:   string(it.ItemStatus),
		})
	}

	doc := orderDocument{
		MerchantOrderID:      o.MerchantOrderID,
		CustomerOrderNumber:  o.CustomerOrderNumber,
		AddressID:            o.AddressID,
		Amount:               database.ToDecimal128(o.Amount),
		Items:                items,
		PaymentMode:          string(o.PaymentMode),
		Status:               string(o.Status),
		PaymentTransactionID: o.PaymentTransactionID,
		ShippingReference:    o.ShippingReference,
		FailureReason:        o.FailureReason,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	if o.Shipment != nil {
		doc.Shipment = toShipmentDocument(o.Shipment)
	}
	if !o.VerifyLeaseUntil.IsZero() {
		lease := o.VerifyLeaseUntil
		doc.VerifyLeaseUntil = &lease
	}
	return doc
}

func (d *orderDocument) toDomain() (*domain.Order, error) {
	amount, err := database.FromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := database.FromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.Item{
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			UnitPrice:    price,
			ItemStatus:   domain.ItemStatus(it.ItemStatus),
		})
	}

	o := &domain.Order{
		ID:                   d.ID.Hex(),
		MerchantOrderID:      d.MerchantOrderID,
		CustomerOrderNumber:  d.CustomerOrderNumber,
		AddressID:            d.AddressID,
		Amount:               amount,
		Items:                items,
		PaymentMode:          domain.PaymentMode(d.PaymentMode),
		Status:               domain.OrderStatus(d.Status),
		PaymentTransactionID: d.PaymentTransactionID,
		ShippingReference:    d.ShippingReference,
		FailureReason:        d.FailureReason,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	if d.Shipment != nil {
		o.Shipment = &domain.Shipment{
			Status:        domain.ShipmentStatus(d.Shipment.Status),
			Attempts:      d.Shipment.Attempts,
			NextAttemptAt: d.Shipment.NextAttemptAt,
			LastError:     d.Shipment.LastError,
		}
	}
	if d.VerifyLeaseUntil != nil {
		o.VerifyLeaseUntil = *d.VerifyLeaseUntil
	}
	return o, nil
}
