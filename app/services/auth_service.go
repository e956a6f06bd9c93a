package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
)

// CaptchaVerifier checks a human-verification token with the captcha
// provider. Implementations live outside the service so tests can stub the
// round trip.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// SignupInput carries the fields a new account is created from. Only campus
// addresses are accepted.
type SignupInput struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email,regex=^[a-zA-Z0-9._%+-]+@(?:[a-zA-Z0-9-]+\\.)*iiit\\.ac\\.in$"`
	Age           int    `json:"age" validate:"required,gte=16"`
	ContactNumber string `json:"contactNumber" validate:"required,digits=10"`
	Password      string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate carries the mutable profile fields. Zero values leave the
// stored field untouched; email is immutable after signup.
type ProfileUpdate struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Age           int    `json:"age" validate:"nullable,gte=16"`
	ContactNumber string `json:"contactNumber" validate:"nullable,digits=10"`
}

// AuthService owns account creation, credential checks, token issuance,
// and profile maintenance.
type AuthService struct {
	users   UserRepository
	tokens  *auth.Manager
	captcha CaptchaVerifier
}

// NewAuthService builds the service. captcha may be nil, in which case
// login skips the human-verification step.
func NewAuthService(users UserRepository, tokens *auth.Manager, captcha CaptchaVerifier) *AuthService {
	return &AuthService{users: users, tokens: tokens, captcha: captcha}
}

// Signup registers an account and returns it with a signed session token.
// The email must be unused; the password is stored only as a bcrypt hash.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashSecret(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Age:           in.Age,
		ContactNumber: in.ContactNumber,
		Password:      hash,
		Cart:          []models.CartItem{},
		SellerReviews: []models.Review{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login checks the captcha token (when a verifier is configured) and the
// credentials, and issues a session token. Wrong email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password, captchaToken string) (*models.User, string, error) {
	if s.captcha != nil {
		ok, err := s.captcha.Verify(ctx, captchaToken)
		if err != nil {
			return nil, "", fmt.Errorf("captcha: %w", err)
		}
		if !ok {
			return nil, "", fmt.Errorf("%w: captcha verification failed", ErrAuthentication)
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrAuthentication)
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if user.IsCasUser && user.Password == "" {
		return nil, "", fmt.Errorf("%w: account uses campus single sign-on", ErrAuthentication)
	}
	if !auth.CheckSecret(user.Password, password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Get returns a user by id.
func (s *AuthService) Get(ctx context.Context, userID string) (*models.User, error) {
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

// ListProfiles returns the public profile of every user.
func (s *AuthService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	profiles := make([]models.Profile, len(users))
	for i := range users {
		profiles[i] = users[i].Profile()
	}
	return profiles, nil
}

// UpdateProfile applies the non-zero fields of in to the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Age != 0 {
		user.Age = in.Age
	}
	if in.ContactNumber != "" {
		user.ContactNumber = in.ContactNumber
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	return user, nil
}

// UpdatePassword rotates the password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckSecret(user.Password, current) {
		return fmt.Errorf("%w: current password is incorrect", ErrAuthentication)
	}
	hash, err := auth.HashSecret(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}
	return nil
}
