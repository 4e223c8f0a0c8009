package adapters

import (
	"context"
	"fmt"
	"slices"
	"time"

	"storefront-api/internal/core/database"
	"storefront-api/internal/features/inventory/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository implements ports.ProductRepository on the products collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository over db.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(database.ProductsCollection)}
}

func (r *MongoProductRepository) Create(ctx context.Context, p *domain.Product) error {
	doc := toProductDocument(p)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return domain.ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *MongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *MongoProductRepository) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"stock": stock, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	return doc.toDomain()
}

func (r *MongoProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Images != nil {
		set["images"] = patch.Images
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Variants != nil {
		set["variants"] = toVariantDocuments(patch.Variants)
	}

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return doc.toDomain()
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, ok := database.ObjectIDFromHex(id)
	if !ok {
		return domain.ErrProductNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DebitStock relies on the update filter as the guard: a zero match count means
// the product is missing, short, or already carries key.
func (r *MongoProductRepository) DebitStock(ctx context.Context, name string, qty int, key string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{
			"name":          name,
			"stock":         bson.M{"$gte": qty},
			"appliedDebits": bson.M{"$ne": key},
		},
		bson.M{
			"$inc":  bson.M{"stock": -qty, "soldStock": qty},
			"$push": bson.M{"appliedDebits": key},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("debit stock: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	var state struct {
		Stock         int      `bson:"stock"`
		AppliedDebits []string `bson:"appliedDebits"`
	}
	err = r.coll.FindOne(ctx, bson.M{"name": name},
		options.FindOne().SetProjection(bson.M{"stock": 1, "appliedDebits": 1}),
	).Decode(&state)
	if database.IsNotFound(err) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("classify rejected debit: %w", err)
	}
	if slices.Contains(state.AppliedDebits, key) {
		return domain.ErrDebitAlreadyApplied
	}
	return domain.ErrInsufficientStock
}

func (r *MongoProductRepository) RestoreStock(ctx context.Context, name string, qty int, key string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"name": name, "appliedDebits": key},
		bson.M{
			"$inc":  bson.M{"stock": qty, "soldStock": -qty},
			"$pull": bson.M{"appliedDebits": key},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) SettleDebit(ctx context.Context, name string, key string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"name": name, "appliedDebits": key},
		bson.M{"$pull": bson.M{"appliedDebits": key}},
	)
	if err != nil {
		return fmt.Errorf("settle debit: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if database.IsNotFound(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

// productDocument is the BSON shape of a product.
type productDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Category      string             `bson:"category,omitempty"`
	Description   string             `bson:"description,omitempty"`
	Images        []string           `bson:"images,omitempty"`
	Stock         int                `bson:"stock"`
	SoldStock     int                `bson:"soldStock"`
	Variants      []variantDocument  `bson:"variants"`
	AppliedDebits []string           `bson:"appliedDebits,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type variantDocument struct {
	Quantity      string               `bson:"quantity"`
	Price         primitive.Decimal128 `bson:"price"`
	DiscountPrice primitive.Decimal128 `bson:"discountPrice"`
	Unit          string               `bson:"unit"`
}

func toVariantDocuments(in []domain.Variant) []variantDocument {
	variants := make([]variantDocument, 0, len(in))
	for _, v := range in {
		variants = append(variants, variantDocument{
			Quantity:      v.Quantity,
			Price:         database.ToDecimal128(v.Price),
			DiscountPrice: database.ToDecimal128(v.DiscountPrice),
			Unit:          v.Unit,
		})
	}
	return variants
}

func toProductDocument(p *domain.Product) productDocument {
	variants := toVariantDocuments(p.Variants)
	return productDocument{
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Images:      p.Images,
		Stock:       p.Stock,
		SoldStock:   p.SoldStock,
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d *productDocument) toDomain() (*domain.Product, error) {
	variants := make([]domain.Variant, 0, len(d.Variants))
	for _, v := range d.Variants {
		price, err := database.FromDecimal128(v.Price)
		if err != nil {
			return nil, err
		}
		discount, err := database.FromDecimal128(v.DiscountPrice)
		if err != nil {
			return nil, err
		}
		variants = append(variants, domain.Variant{
			Quantity:      v.Quantity,
			Price:         price,
			DiscountPrice: discount,
			Unit:          v.Unit,
		})
	}
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Images:      d.Images,
		Stock:       d.Stock,
		SoldStock:   d.SoldStock,
		Variants:    variants,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
