package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product categories form a fixed enumeration.
const (
	CategoryClothing    = "clothing"
	CategoryGrocery     = "grocery"
	CategoryElectronics = "electronics"
	CategoryFurniture   = "furniture"
	CategoryOther       = "other"
)

// Categories returns every known category, in display order.
func Categories() []string {
	return []string{CategoryClothing, CategoryGrocery, CategoryElectronics, CategoryFurniture, CategoryOther}
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryClothing, CategoryGrocery, CategoryElectronics, CategoryFurniture, CategoryOther:
		return true
	}
	return false
}

// Product is a catalog-store document. Products are immutable after
// creation: there is no update or delete path.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	SellerID    primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
