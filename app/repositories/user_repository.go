// Package repositories holds the MongoDB implementations of the store
// contracts declared in app/services. Missing documents are reported as
// services.ErrNotFound so callers never see driver sentinels.
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

// UserRepository handles user documents in the "users" collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return &user, nil
}

// FindByIDs loads a batch of users keyed by id. Absent ids are simply
// missing from the map, not an error.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("users: find by ids: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var user models.User
		if err := cur.Decode(&user); err != nil {
			return nil, fmt.Errorf("users: decode: %w", err)
		}
		u := user
		out[user.ID] = &u
	}
	return out, cur.Err()
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, services.ErrNotFound
		}
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return &user, nil
}

// All returns every user, newest first.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("users: find all: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("users: decode all: %w", err)
	}
	return users, nil
}

// Insert persists a new user and fills in the generated id.
func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

// Update replaces the stored document with u.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index. Called from the migrate
// command and at server boot.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users: ensure indexes: %w", err)
	}
	return nil
}
