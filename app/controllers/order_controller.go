package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/logger"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// OrderController serves the order lifecycle: checkout, listing, and
// delivery-code issuance and verification.
type OrderController struct {
	orders *services.OrderService
	cart   *services.CartService
}

func NewOrderController(orders *services.OrderService, cart *services.CartService) *OrderController {
	return &OrderController{orders: orders, cart: cart}
}

// Create places orders for the submitted items, one order per item.
// The authenticated user is the buyer; the cart is emptied on success.
// POST /api/orders
func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Items []services.CheckoutItem `json:"items" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	buyerID := middleware.UserID(r.Context())
	orders, err := c.orders.Checkout(r.Context(), buyerID, in.Items)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The orders are already durable; a failed cart clear is only noise.
	if err := c.cart.Clear(r.Context(), buyerID); err != nil {
		logger.WithCtx(r.Context()).Warn("cart clear after checkout failed", "error", err)
	}

	response.Created(w, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// List returns the authenticated view of orders for one role and status.
// GET /api/orders?role=buyer&status=pending&userId=...
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if userID == "" {
		userID = middleware.UserID(r.Context())
	}

	orders, err := c.orders.List(r.Context(), q.Get("role"), userID, q.Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GenerateOTP issues a fresh delivery code for the order. The plaintext
// code appears in this response and nowhere else.
// POST /api/orders/{orderId}/otp
func (c *OrderController) GenerateOTP(w http.ResponseWriter, r *http.Request) {
	code, err := c.orders.GenerateDeliveryCode(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"otp": code})
}

// VerifyOTP checks a candidate delivery code and completes the order on a
// match. POST /api/orders/{orderId}/verify
func (c *OrderController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OTP string `json:"otp" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	ok, err := c.orders.VerifyDeliveryCode(r.Context(), chi.URLParam(r, "orderId"), in.OTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		response.Error(w, http.StatusBadRequest, "invalid otp")
		return
	}
	response.Success(w, map[string]string{"message": "otp verified successfully"})
}
