package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/collection"
	"github.com/shashiranjanraj/campusmart/pkg/event"
	"github.com/shashiranjanraj/campusmart/pkg/metrics"
)

// Roles a user can hold on an order.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// Lifecycle events fired by OrderService. Payloads are the *Event structs
// below.
const (
	EventOrderCreated   = "order.created"
	EventOrderDelivered = "order.delivered"
)

// OrderCreatedEvent is fired once per checkout, after all orders persist.
type OrderCreatedEvent struct {
	BuyerID string
	Orders  []models.Order
}

// OrderDeliveredEvent is fired when a delivery code verifies successfully.
type OrderDeliveredEvent struct {
	OrderID string
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// OrderView is an order enriched with its referenced product and the
// counterpart user (the seller when listing as buyer, and vice versa).
type OrderView struct {
	models.Order
	Product     *models.Product `json:"product,omitempty"`
	Counterpart *models.Profile `json:"counterpart,omitempty"`
}

// OrderService owns the order lifecycle: checkout, delivery-code issuance
// and verification, and status listing.
//
// Concurrent mutations of the same order (two near-simultaneous code
// issuances, say) are not coordinated: last write wins. That race is
// accepted for this domain and intentionally not papered over with locks.
type OrderService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
}

// NewOrderService wires the order lifecycle over the three stores.
func NewOrderService(orders OrderRepository, products ProductRepository, users UserRepository) *OrderService {
	return &OrderService{orders: orders, products: products, users: users}
}

// Checkout converts cart line items into persisted orders, one per item.
//
// Semantics are all-or-nothing: every item is resolved and priced before a
// single order is written, so a missing product aborts the batch with
// nothing persisted. Totals are computed server-side from the catalog price
// at this instant and frozen on the order together with a product snapshot.
func (s *OrderService) Checkout(ctx context.Context, buyerID string, items []CheckoutItem) ([]models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	buyer, err := primitive.ObjectIDFromHex(buyerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid buyer id", ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, buyer); err != nil {
		return nil, fmt.Errorf("buyer %s: %w", buyerID, err)
	}

	now := time.Now()
	orders := make([]*models.Order, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product id %q", ErrValidation, item.ProductID)
		}
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, err)
		}

		orders = append(orders, &models.Order{
			BuyerID:     buyer,
			SellerID:    product.SellerID,
			ProductID:   product.ID,
			Quantity:    item.Quantity,
			TotalAmount: float64(item.Quantity) * product.Price,
			Status:      models.OrderPending,
			ProductDetails: models.ProductSnapshot{
				Name:     product.Name,
				Price:    product.Price,
				ImageURL: product.ImageURL,
				Category: product.Category,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.orders.InsertMany(ctx, orders); err != nil {
		return nil, fmt.Errorf("persist orders: %w", err)
	}

	metrics.OrdersCreated.Add(float64(len(orders)))

	out := collection.Map(orders, func(o *models.Order) models.Order { return *o })
	event.Fire(EventOrderCreated, OrderCreatedEvent{BuyerID: buyerID, Orders: out})
	return out, nil
}

// GenerateDeliveryCode issues a fresh 6-digit delivery code for the order,
// replacing any previously issued code. Only the bcrypt hash is persisted;
// the plaintext is returned exactly once and cannot be retrieved again.
func (s *OrderService) GenerateDeliveryCode(ctx context.Context, orderID string) (string, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return "", fmt.Errorf("order %s: %w", orderID, err)
	}

	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("generate delivery code: %w", err)
	}
	hash, err := auth.HashSecret(code)
	if err != nil {
		return "", fmt.Errorf("hash delivery code: %w", err)
	}
	if err := s.orders.SetDeliveryCode(ctx, id, hash); err != nil {
		return "", fmt.Errorf("store delivery code: %w", err)
	}

	metrics.DeliveryCodesIssued.Inc()
	return code, nil
}

// VerifyDeliveryCode compares a candidate code against the stored hash.
//
// A mismatch is an ordinary outcome, not an error: it returns (false, nil)
// and leaves the order untouched so a fresh code can be issued and retried.
// Verifying an already-delivered order is rejected so the delivery date is
// stamped exactly once. Attempts are not counted or limited.
func (s *OrderService) VerifyDeliveryCode(ctx context.Context, orderID, candidate string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, fmt.Errorf("%w: invalid order id", ErrValidation)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("order %s: %w", orderID, err)
	}
	if order.Status == models.OrderDelivered {
		return false, fmt.Errorf("%w: order already delivered", ErrConflict)
	}

	if order.OTPHash == "" || !auth.CheckSecret(order.OTPHash, candidate) {
		metrics.DeliveryCodeVerifications.WithLabelValues("mismatch").Inc()
		return false, nil
	}

	if err := s.orders.MarkDelivered(ctx, id, time.Now()); err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}

	metrics.DeliveryCodeVerifications.WithLabelValues("match").Inc()
	event.Fire(EventOrderDelivered, OrderDeliveredEvent{OrderID: orderID})
	return true, nil
}

// List returns the orders a user holds in the given role and status,
// newest first, each enriched with the referenced product and counterpart
// profile. No matches yields an empty slice, never an error.
func (s *OrderService) List(ctx context.Context, role, userID, status string) ([]OrderView, error) {
	if role != RoleBuyer && role != RoleSeller {
		return nil, fmt.Errorf("%w: role must be buyer or seller", ErrValidation)
	}
	if status != models.OrderPending && status != models.OrderDelivered {
		return nil, fmt.Errorf("%w: status must be pending or delivered", ErrValidation)
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}

	orders, err := s.orders.FindByPartyAndStatus(ctx, role, uid, status)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return []OrderView{}, nil
	}

	productIDs := collection.Unique(collection.Map(orders, func(o models.Order) primitive.ObjectID { return o.ProductID }))
	userIDs := collection.Unique(collection.Map(orders, func(o models.Order) primitive.ObjectID {
		if role == RoleBuyer {
			return o.SellerID
		}
		return o.BuyerID
	}))

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	counterparts, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load counterparts: %w", err)
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		view := OrderView{Order: o}
		view.Product = products[o.ProductID]
		counterpartID := o.SellerID
		if role == RoleSeller {
			counterpartID = o.BuyerID
		}
		if u := counterparts[counterpartID]; u != nil {
			p := u.Profile()
			view.Counterpart = &p
		}
		views[i] = view
	}
	return views, nil
}

// randomCode draws a uniformly distributed 6-digit code from crypto/rand.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
