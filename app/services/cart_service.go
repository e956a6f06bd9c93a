package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/collection"
)

// CartLine is one cart entry populated with its product document. Lines
// whose product has since vanished from the catalog carry a nil Product and
// contribute nothing to the total.
type CartLine struct {
	Product  *models.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// CartService manipulates the cart embedded on the user document. Every
// operation loads the user, mutates the cart slice, and writes the user
// back; concurrent edits to the same cart are last-write-wins.
type CartService struct {
	users    UserRepository
	products ProductRepository
}

func NewCartService(users UserRepository, products ProductRepository) *CartService {
	return &CartService{users: users, products: products}
}

// Get returns the user's cart populated with product documents, plus the
// running total over resolvable lines.
func (s *CartService) Get(ctx context.Context, userID string) ([]CartLine, float64, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.populate(ctx, user.Cart)
}

// Add puts quantity units of a product into the cart, merging with an
// existing line for the same product. Users cannot add their own listings.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int) ([]CartLine, float64, error) {
	if quantity < 1 {
		return nil, 0, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	product, err := s.products.FindByID(ctx, pid)
	if err != nil {
		return nil, 0, fmt.Errorf("product %s: %w", productID, err)
	}
	if product.SellerID == user.ID {
		return nil, 0, fmt.Errorf("%w: cannot add your own product to the cart", ErrConflict)
	}

	merged := false
	for i := range user.Cart {
		if user.Cart[i].ProductID == pid {
			user.Cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		user.Cart = append(user.Cart, models.CartItem{ProductID: pid, Quantity: quantity})
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, 0, fmt.Errorf("persist cart: %w", err)
	}
	return s.populate(ctx, user.Cart)
}

// UpdateQuantity applies a signed delta to an existing line. Driving the
// quantity to zero or below removes the line. Updating a product that is
// not in the cart is a not-found condition.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, delta int) ([]CartLine, float64, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	idx := -1
	for i := range user.Cart {
		if user.Cart[i].ProductID == pid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, 0, fmt.Errorf("%w: product not in cart", ErrNotFound)
	}

	user.Cart[idx].Quantity += delta
	if user.Cart[idx].Quantity <= 0 {
		user.Cart = append(user.Cart[:idx], user.Cart[idx+1:]...)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, 0, fmt.Errorf("persist cart: %w", err)
	}
	return s.populate(ctx, user.Cart)
}

// Remove deletes a line from the cart. Removing an absent product is a
// no-op success, matching the idempotent delete the frontend expects.
func (s *CartService) Remove(ctx context.Context, userID, productID string) ([]CartLine, float64, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid product id", ErrValidation)
	}

	user.Cart = collection.Reject(user.Cart, func(item models.CartItem) bool {
		return item.ProductID == pid
	})
	if user.Cart == nil {
		user.Cart = []models.CartItem{}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, 0, fmt.Errorf("persist cart: %w", err)
	}
	return s.populate(ctx, user.Cart)
}

// Clear empties the cart. Checkout calls this after orders persist.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.Cart = []models.CartItem{}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (s *CartService) load(ctx context.Context, userID string) (*models.User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return user, nil
}

func (s *CartService) populate(ctx context.Context, cart []models.CartItem) ([]CartLine, float64, error) {
	if len(cart) == 0 {
		return []CartLine{}, 0, nil
	}
	ids := collection.Map(cart, func(item models.CartItem) primitive.ObjectID { return item.ProductID })
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load cart products: %w", err)
	}

	lines := collection.Map(cart, func(item models.CartItem) CartLine {
		return CartLine{Product: products[item.ProductID], Quantity: item.Quantity}
	})
	total := collection.Sum(lines, func(l CartLine) float64 {
		if l.Product == nil {
			return 0
		}
		return float64(l.Quantity) * l.Product.Price
	})
	return lines, total, nil
}
