package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
)

// UserRepository is the identity-store contract.
// Lookup methods return ErrNotFound when no document matches.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

// ProductRepository is the catalog-store contract.
type ProductRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	All(ctx context.Context, category string) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
}

// OrderRepository is the order-store contract.
// Orders are never deleted; mutations are limited to the delivery-code hash
// and the pending → delivered transition.
type OrderRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	InsertMany(ctx context.Context, orders []*models.Order) error

	// SetDeliveryCode overwrites the stored delivery-code hash,
	// invalidating any previously issued code.
	SetDeliveryCode(ctx context.Context, id primitive.ObjectID, hash string) error

	// MarkDelivered flips status to delivered and stamps delivery and
	// transaction dates.
	MarkDelivered(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// FindByPartyAndStatus returns orders where the given party field
	// (buyer or seller) references userID and status matches, newest
	// created first. An empty result is not an error.
	FindByPartyAndStatus(ctx context.Context, role string, userID primitive.ObjectID, status string) ([]models.Order, error)
}
