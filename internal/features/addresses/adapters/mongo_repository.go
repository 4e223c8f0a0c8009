package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/addresses/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAddressRepository implements ports.AddressRepository on the addresses collection.
type MongoAddressRepository struct {
	coll *mongo.Collection
}

// NewMongoAddressRepository creates a repository over db.
func NewMongoAddressRepository(db *mongo.Database) *MongoAddressRepository {
	return &MongoAddressRepository{coll: db.Collection(database.AddressesCollection)}
}

func (r *MongoAddressRepository) Create(ctx context.Context, a *domain.Address) error {
	doc := addressDocument{
		ID:           primitive.NewObjectID(),
		CustomerID:   a.CustomerID,
		Name:         a.Name,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		Landmark:     a.Landmark,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		MobileNumber: a.MobileNumber,
		Email:        a.Email,
		CreatedAt:    a.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (r *MongoAddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrAddressNotFound
	}

	var doc addressDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find address: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoAddressRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error) {
	cur, err := r.coll.Find(ctx, bson.M{"customerId": customerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find addresses: %w", err)
	}
	defer cur.Close(ctx)

	var docs []addressDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode addresses: %w", err)
	}
	out := make([]*domain.Address, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

type addressDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CustomerID   string             `bson:"customerId,omitempty"`
	Name         string             `bson:"name,omitempty"`
	FirstName    string             `bson:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty"`
	AddressLine1 string             `bson:"addressLine1"`
	AddressLine2 string             `bson:"addressLine2,omitempty"`
	Landmark     string             `bson:"landmark,omitempty"`
	City         string             `bson:"city"`
	State        string             `bson:"state"`
	Pincode      string             `bson:"pincode"`
	MobileNumber string             `bson:"mobileNumber"`
	Email        string             `bson:"email,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *addressDocument) toDomain() *domain.Address {
	return &domain.Address{
		ID:           d.ID.Hex(),
		CustomerID:   d.CustomerID,
		Name:         d.Name,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		Landmark:     d.Landmark,
		City:         d.City,
		State:        d.State,
		Pincode:      d.Pincode,
		MobileNumber: d.MobileNumber,
		Email:        d.Email,
		CreatedAt:    d.CreatedAt,
	}
}
