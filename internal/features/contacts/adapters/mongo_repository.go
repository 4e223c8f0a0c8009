package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/contacts/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContactRepository implements ports.ContactRepository on the contacts collection.
type MongoContactRepository struct {
	coll *mongo.Collection
}

func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{coll: db.Collection(database.ContactsCollection)}
}

func (r *MongoContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	doc := contactDocument{
		ID:        primitive.NewObjectID(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Subject:   c.Subject,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *MongoContactRepository) List(ctx context.Context) ([]*domain.Contact, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []contactDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	out := make([]*domain.Contact, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Contact{
			ID:        d.ID.Hex(),
			Name:      d.Name,
			Email:     d.Email,
			Phone:     d.Phone,
			Subject:   d.Subject,
			Message:   d.Message,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

func (r *MongoContactRepository) Delete(ctx context.Context, id string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrContactNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

type contactDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty"`
	Subject   string             `bson:"subject,omitempty"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
}
