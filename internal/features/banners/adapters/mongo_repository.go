package adapters

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/banners/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBannerRepository implements ports.BannerRepository on the banners collection.
type MongoBannerRepository struct {
	coll *mongo.Collection
}

func NewMongoBannerRepository(db *mongo.Database) *MongoBannerRepository {
	return &MongoBannerRepository{coll: db.Collection(database.BannersCollection)}
}

func (r *MongoBannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	doc := bannerDocument{
		ID:            primitive.NewObjectID(),
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Desc:          b.Desc,
		Image:         b.Image,
		Status:        b.Status,
		TitleColor:    b.TitleColor,
		SubtitleColor: b.SubtitleColor,
		DescColor:     b.DescColor,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *MongoBannerRepository) List(ctx context.Context) ([]*domain.Banner, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find banners: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bannerDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode banners: %w", err)
	}
	out := make([]*domain.Banner, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *MongoBannerRepository) Get(ctx context.Context, id string) (*domain.Banner, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrBannerNotFound
	}

	var doc bannerDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrBannerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find banner: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *MongoBannerRepository) SetStatus(ctx context.Context, id string, status bool) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrBannerNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update banner status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBannerNotFound
	}
	return nil
}

func (r *MongoBannerRepository) Delete(ctx context.Context, id string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrBannerNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBannerNotFound
	}
	return nil
}

type bannerDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Subtitle      string             `bson:"subtitle"`
	Desc          string             `bson:"desc"`
	Image         string             `bson:"image"`
	Status        bool               `bson:"status"`
	TitleColor    string             `bson:"titleColor"`
	SubtitleColor string             `bson:"subtitleColor"`
	DescColor     string             `bson:"descColor"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d *bannerDocument) toDomain() *domain.Banner {
	return &domain.Banner{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Subtitle:      d.Subtitle,
		Desc:          d.Desc,
		Image:         d.Image,
		Status:        d.Status,
		TitleColor:    d.TitleColor,
		SubtitleColor: d.SubtitleColor,
		DescColor:     d.DescColor,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
