package seeders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
	Register("products", SeedProducts)
}

var seedSellerID = primitive.NewObjectID()

// SeedUsers inserts a demo buyer and seller. Idempotent: existing emails
// are left alone.
func SeedUsers(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("users")

	hash, err := auth.HashSecret("password")
	if err != nil {
		return err
	}

	now := time.Now()
	users := []models.User{
		{
			ID:            seedSellerID,
			FirstName:     "Asha",
			LastName:      "Verma",
			Email:         "asha.verma@students.iiit.ac.in",
			Age:           21,
			ContactNumber: "9876543210",
			Password:      hash,
			Cart:          []models.CartItem{},
			SellerReviews: []models.Review{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            primitive.NewObjectID(),
			FirstName:     "Rohan",
			LastName:      "Iyer",
			Email:         "rohan.iyer@research.iiit.ac.in",
			Age:           23,
			ContactNumber: "9123456780",
			Password:      hash,
			Cart:          []models.CartItem{},
			SellerReviews: []models.Review{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}

	for _, u := range users {
		err := col.FindOne(ctx, bson.M{"email": u.Email}).Err()
		if err == nil {
			continue
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		if _, err := col.InsertOne(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// SeedProducts inserts a few demo listings owned by the seeded seller.
func SeedProducts(ctx context.Context, db *mongo.Database) error {
	col := db.Collection("products")

	count, err := col.CountDocuments(ctx, bson.M{"sellerId": seedSellerID})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	products := []interface{}{
		models.Product{
			Name:        "Second-hand study table",
			Price:       1200,
			Description: "Solid wood, minor scratches, pickup from OBH.",
			Category:    models.CategoryFurniture,
			SellerID:    seedSellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		models.Product{
			Name:        "Scientific calculator",
			Price:       450,
			Description: "FX-991ES Plus, barely used.",
			Category:    models.CategoryElectronics,
			SellerID:    seedSellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		models.Product{
			Name:        "Hoodie (L)",
			Price:       350,
			Description: "College fest hoodie, worn twice.",
			Category:    models.CategoryClothing,
			SellerID:    seedSellerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	_, err = col.InsertMany(ctx, products)
	return err
}
