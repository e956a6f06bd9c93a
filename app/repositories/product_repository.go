package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/services"
)

// ProductRepository handles product documents in the "products" collection.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection("products")}
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("products: find by id: %w", err)
	}
	return &product, nil
}

// FindByIDs loads a batch of products keyed by id. Absent ids are simply
// missing from the map, not an error.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := make(map[primitive.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("products: find by ids: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var product models.Product
		if err := cur.Decode(&product); err != nil {
			return nil, fmt.Errorf("products: decode: %w", err)
		}
		p := product
		out[product.ID] = &p
	}
	return out, cur.Err()
}

// All returns the catalog newest first, optionally filtered to a category.
func (r *ProductRepository) All(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("products: find all: %w", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode all: %w", err)
	}
	return products, nil
}

// Insert persists a new product and fills in the generated id.
func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("products: insert: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// EnsureIndexes creates the category and seller listing indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("products: ensure indexes: %w", err)
	}
	return nil
}
