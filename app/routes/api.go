// Package routes wires the HTTP surface onto the router.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/campusmart/app/controllers"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/response"
	"github.com/shashiranjanraj/campusmart/pkg/router"
)

// Controllers bundles everything RegisterAPI mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	User    *controllers.UserController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Product *controllers.ProductController
	Chat    *controllers.ChatController
}

// RegisterAPI mounts the full API surface. Catalog reads, signup, login,
// SSO, and support chat are public; everything touching a specific user's
// data requires a Bearer token.
func RegisterAPI(r *router.Router, c Controllers, tokens *auth.Manager, graphqlHandler http.HandlerFunc) {
	api := r.Group("/api")

	// Public surface.
	api.Post("/users", "users.signup", c.Auth.Signup)
	api.Post("/sessions", "sessions.create", c.Auth.Login)
	api.Get("/sso/login", "sso.login", c.Auth.SSOLogin)
	api.Get("/sso/callback", "sso.callback", c.Auth.SSOCallback)

	api.Get("/products", "products.index", c.Product.Index)
	api.Get("/products/{id}", "products.show", c.Product.Show)

	api.Post("/support/chat", "support.chat", c.Chat.Handle)
	api.Post("/graphql", "graphql", graphqlHandler)

	// Authenticated surface.
	protected := api.Group("", middleware.Auth(tokens))

	protected.Get("/users", "users.index", c.User.Index)
	protected.Get("/users/{id}", "users.show", c.User.Show)
	protected.Put("/users/{id}", "users.update", c.User.Update)
	protected.Put("/users/{id}/password", "users.password", c.User.UpdatePassword)
	protected.Post("/sellers/{id}/reviews", "sellers.review", c.User.AddReview)

	protected.Post("/products", "products.create", c.Product.Create)
	protected.Post("/products/images", "products.upload", c.Product.UploadImage)

	protected.Get("/cart", "cart.show", c.Cart.Show)
	protected.Delete("/cart", "cart.clear", c.Cart.Clear)
	protected.Post("/cart/items", "cart.add", c.Cart.Add)
	protected.Patch("/cart/items/{productId}", "cart.update", c.Cart.Update)
	protected.Delete("/cart/items/{productId}", "cart.remove", c.Cart.Remove)

	protected.Post("/orders", "orders.create", c.Order.Create)
	protected.Get("/orders", "orders.index", c.Order.List)
	protected.Post("/orders/{orderId}/otp", "orders.otp", c.Order.GenerateOTP)
	protected.Post("/orders/{orderId}/verify", "orders.verify", c.Order.VerifyOTP)

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
}
