package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line in a user's embedded cart.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Review is a rating+comment a buyer left on a seller's profile.
// At most one review per reviewer-seller pair.
type Review struct {
	Reviewer  primitive.ObjectID `bson:"reviewer" json:"reviewer"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// User is an identity-store document: credentials, embedded cart, and the
// seller-review aggregate.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName     string             `bson:"firstName" json:"firstName"`
	LastName      string             `bson:"lastName" json:"lastName"`
	Email         string             `bson:"email" json:"email"`
	Age           int                `bson:"age,omitempty" json:"age,omitempty"`
	ContactNumber string             `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Password      string             `bson:"password" json:"-"` // bcrypt hash, never serialised
	IsCasUser     bool               `bson:"isCasUser,omitempty" json:"isCasUser,omitempty"`
	Cart          []CartItem         `bson:"cart" json:"cart"`
	SellerReviews []Review           `bson:"sellerReviews" json:"sellerReviews"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	TotalReviews  int                `bson:"totalReviews" json:"totalReviews"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile is the public subset of a user embedded in API responses
// (order counterparties, review authors, product sellers).
type Profile struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
}

// Profile projects the public fields of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// RecalculateRating recomputes the review aggregate from SellerReviews.
func (u *User) RecalculateRating() {
	u.TotalReviews = len(u.SellerReviews)
	if u.TotalReviews == 0 {
		u.AverageRating = 0
		return
	}
	total := 0
	for _, r := range u.SellerReviews {
		total += r.Rating
	}
	u.AverageRating = float64(total) / float64(u.TotalReviews)
}
