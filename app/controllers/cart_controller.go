package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// CartController serves the authenticated user's cart.
type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

func cartPayload(lines []services.CartLine, total float64) map[string]interface{} {
	return map[string]interface{}{"cart": lines, "total": total}
}

// Show returns the cart with populated products. GET /api/cart
func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	lines, total, err := c.cart.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, cartPayload(lines, total))
}

// Add puts a product into the cart. POST /api/cart/items
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,gte=1"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	lines, total, err := c.cart.Add(r.Context(), middleware.UserID(r.Context()), in.ProductID, in.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, cartPayload(lines, total))
}

// Update applies a signed quantity delta to a cart line.
// PATCH /api/cart/items/{productId}
func (c *CartController) Update(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Delta int `json:"delta" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	lines, total, err := c.cart.UpdateQuantity(r.Context(),
		middleware.UserID(r.Context()), chi.URLParam(r, "productId"), in.Delta)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, cartPayload(lines, total))
}

// Remove deletes a cart line. DELETE /api/cart/items/{productId}
func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	lines, total, err := c.cart.Remove(r.Context(),
		middleware.UserID(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, cartPayload(lines, total))
}

// Clear empties the cart. DELETE /api/cart
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	if err := c.cart.Clear(r.Context(), middleware.UserID(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, cartPayload([]services.CartLine{}, 0))
}
