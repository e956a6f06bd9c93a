package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle states. The only transition exercised by the API is
// pending → delivered, on a successful delivery-code verification.
// Cancelled is reachable only through administrative paths.
const (
	OrderPending   = "pending"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// ProductSnapshot freezes the product display fields at order-creation
// time so later catalog changes never rewrite order history.
type ProductSnapshot struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	ImageURL string  `bson:"imageUrl" json:"imageUrl"`
	Category string  `bson:"category" json:"category"`
}

// Order is an order-store document. Buyer, seller, and product are
// references into the other stores; TotalAmount is frozen at creation.
// The delivery code is held only as a bcrypt hash.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BuyerID         primitive.ObjectID `bson:"buyerId" json:"buyerId"`
	SellerID        primitive.ObjectID `bson:"sellerId" json:"sellerId"`
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          string             `bson:"status" json:"status"`
	OTPHash         string             `bson:"otp,omitempty" json:"-"`
	DeliveryDate    *time.Time         `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	TransactionDate *time.Time         `bson:"transactionDate,omitempty" json:"transactionDate,omitempty"`
	ProductDetails  ProductSnapshot    `bson:"productDetails" json:"productDetails"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
