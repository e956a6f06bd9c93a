package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/services"
)

// OrderRepository handles order documents in the "orders" collection.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection("orders")}
}

// FindByID looks up an order by primary key.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("orders: find by id: %w", err)
	}
	return &order, nil
}

// InsertMany persists a batch of orders in one write and fills in the
// generated ids.
func (r *OrderRepository) InsertMany(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	docs := make([]interface{}, len(orders))
	for i, o := range orders {
		docs[i] = o
	}

	res, err := r.col.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("orders: insert many: %w", err)
	}
	for i, raw := range res.InsertedIDs {
		if id, ok := raw.(primitive.ObjectID); ok {
			orders[i].ID = id
		}
	}
	return nil
}

// SetDeliveryCode overwrites the stored delivery-code hash, invalidating
// any previously issued code.
func (r *OrderRepository) SetDeliveryCode(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"otp": hash, "updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("orders: set delivery code: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// MarkDelivered flips status to delivered and stamps the delivery and
// transaction dates.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":          models.OrderDelivered,
			"deliveryDate":    at,
			"transactionDate": at,
			"updatedAt":       at,
		},
	})
	if err != nil {
		return fmt.Errorf("orders: mark delivered: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// FindByPartyAndStatus returns orders where the given party field (buyer or
// seller) references userID and status matches, newest created first.
func (r *OrderRepository) FindByPartyAndStatus(ctx context.Context, role string, userID primitive.ObjectID, status string) ([]models.Order, error) {
	field := "buyerId"
	if role == services.RoleSeller {
		field = "sellerId"
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{field: userID, "status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("orders: find by party: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode all: %w", err)
	}
	return orders, nil
}

// EnsureIndexes creates the listing indexes for both parties.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyerId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("orders: ensure indexes: %w", err)
	}
	return nil
}
