package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/middleware"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// UserController serves profiles, password changes, and seller reviews.
type UserController struct {
	auth    *services.AuthService
	reviews *services.ReviewService
}

func NewUserController(auth *services.AuthService, reviews *services.ReviewService) *UserController {
	return &UserController{auth: auth, reviews: reviews}
}

// Index returns every user's public profile. GET /api/users
func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	profiles, err := c.auth.ListProfiles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"users": profiles,
		"count": len(profiles),
	})
}

// Show returns one user's profile. GET /api/users/{id}
func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	user, err := c.auth.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"user": user})
}

// Update applies profile changes. Users can only edit themselves.
// PUT /api/users/{id}
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != middleware.UserID(r.Context()) {
		response.Forbidden(w)
		return
	}

	var in services.ProfileUpdate
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	user, err := c.auth.UpdateProfile(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"user": user})
}

// UpdatePassword rotates the password after checking the current one.
// PUT /api/users/{id}/password
func (c *UserController) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != middleware.UserID(r.Context()) {
		response.Forbidden(w)
		return
	}

	var in struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=6"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	if err := c.auth.UpdatePassword(r.Context(), id, in.CurrentPassword, in.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"message": "password updated"})
}

// AddReview records a review against a seller.
// POST /api/sellers/{id}/reviews
func (c *UserController) AddReview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
		Comment string `json:"comment" validate:"required"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	review, err := c.reviews.AddReview(r.Context(),
		chi.URLParam(r, "id"), middleware.UserID(r.Context()), in.Rating, in.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.Created(w, review)
}
