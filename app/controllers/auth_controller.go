package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/bind"
	"github.com/shashiranjanraj/campusmart/pkg/logger"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// AuthController serves signup, login, and campus single sign-on.
type AuthController struct {
	auth *services.AuthService
	sso  *services.CASService
}

func NewAuthController(auth *services.AuthService, sso *services.CASService) *AuthController {
	return &AuthController{auth: auth, sso: sso}
}

// Signup registers an account. POST /api/users
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	user, token, err := c.auth.Signup(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("user registered", "userId", user.ID.Hex())
	response.Created(w, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Login checks credentials and issues a token. POST /api/sessions
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email        string `json:"email" validate:"required,email"`
		Password     string `json:"password" validate:"required"`
		CaptchaToken string `json:"captchaToken"`
	}
	if errs, err := bind.JSON(r, &in); errs != nil || err != nil {
		writeBindError(w, errs, err)
		return
	}

	user, token, err := c.auth.Login(r.Context(), in.Email, in.Password, in.CaptchaToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// SSOLogin bounces the browser to the campus CAS login page.
// GET /api/sso/login
func (c *AuthController) SSOLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, c.sso.LoginURL(), http.StatusFound)
}

// SSOCallback handles the CAS redirect carrying the service ticket. Every
// failure redirects back to the frontend login page; the browser is
// mid-redirect and cannot use a JSON error.
// GET /api/sso/callback?ticket=...
func (c *AuthController) SSOCallback(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		http.Redirect(w, r, c.sso.FailureURL("no_ticket"), http.StatusFound)
		return
	}

	target, err := c.sso.Callback(r.Context(), ticket)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("sso callback failed", "error", err)
		http.Redirect(w, r, c.sso.FailureURL("cas_auth_failed"), http.StatusFound)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}
