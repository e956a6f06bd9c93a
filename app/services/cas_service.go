package services

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/http"
)

// CASIdentity is what the campus single sign-on asserts about a user after
// a successful ticket validation.
type CASIdentity struct {
	Email     string
	FirstName string
	LastName  string
}

// TicketValidator exchanges a CAS service ticket for the identity it was
// issued to. The production implementation talks to the campus CAS server;
// tests substitute a stub.
type TicketValidator interface {
	Validate(ctx context.Context, ticket string) (*CASIdentity, error)
}

// CASService implements campus single sign-on: it builds the login redirect
// and turns validated tickets into local accounts and session tokens.
type CASService struct {
	users       UserRepository
	tokens      *auth.Manager
	validator   TicketValidator
	casBaseURL  string
	serviceURL  string
	frontendURL string
}

func NewCASService(users UserRepository, tokens *auth.Manager, validator TicketValidator, casBaseURL, serviceURL, frontendURL string) *CASService {
	return &CASService{
		users:       users,
		tokens:      tokens,
		validator:   validator,
		casBaseURL:  casBaseURL,
		serviceURL:  serviceURL,
		frontendURL: frontendURL,
	}
}

// LoginURL is the CAS login page carrying our callback as the service.
func (s *CASService) LoginURL() string {
	return s.casBaseURL + "/login?service=" + url.QueryEscape(s.serviceURL)
}

// FailureURL is where the frontend lands when sign-on cannot complete.
func (s *CASService) FailureURL(reason string) string {
	return s.frontendURL + "/login?error=" + url.QueryEscape(reason)
}

// Callback validates the ticket, finds or creates the local account for the
// asserted identity, and returns the frontend URL carrying a session token.
// CAS-created accounts have no usable password and are marked isCasUser.
func (s *CASService) Callback(ctx context.Context, ticket string) (string, error) {
	if ticket == "" {
		return "", fmt.Errorf("%w: missing ticket", ErrValidation)
	}

	identity, err := s.validator.Validate(ctx, ticket)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if identity.Email == "" {
		return "", fmt.Errorf("%w: CAS response carried no email", ErrUpstream)
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("find sso user: %w", err)
		}
		now := time.Now()
		user = &models.User{
			FirstName:     identity.FirstName,
			LastName:      identity.LastName,
			Email:         identity.Email,
			IsCasUser:     true,
			Cart:          []models.CartItem{},
			SellerReviews: []models.Review{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.users.Insert(ctx, user); err != nil {
			return "", fmt.Errorf("create sso user: %w", err)
		}
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return s.frontendURL + "/caslogin?token=" + url.QueryEscape(token), nil
}

// casServiceResponse mirrors the CAS 2.0 serviceValidate XML payload.
type casServiceResponse struct {
	XMLName xml.Name `xml:"serviceResponse"`
	Success *struct {
		User       string `xml:"user"`
		Attributes struct {
			Email     string `xml:"E-Mail"`
			FirstName string `xml:"FirstName"`
			LastName  string `xml:"LastName"`
		} `xml:"attributes"`
	} `xml:"authenticationSuccess"`
	Failure *struct {
		Code    string `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"authenticationFailure"`
}

// HTTPTicketValidator validates tickets against a CAS 2.0 server's
// serviceValidate endpoint.
type HTTPTicketValidator struct {
	CASBaseURL string
	ServiceURL string
}

func (v *HTTPTicketValidator) Validate(ctx context.Context, ticket string) (*CASIdentity, error) {
	validateURL := v.CASBaseURL + "/serviceValidate?service=" + url.QueryEscape(v.ServiceURL) + "&ticket=" + url.QueryEscape(ticket)

	resp, err := http.Get(validateURL).
		Header("Accept", "application/xml").
		Timeout(10 * time.Second).
		Retry(2, time.Second).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("cas: validate ticket: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("cas: %w", err)
	}

	var payload casServiceResponse
	if err := xml.Unmarshal(resp.Raw, &payload); err != nil {
		return nil, fmt.Errorf("cas: decode response: %w", err)
	}
	if payload.Success == nil {
		if payload.Failure != nil {
			return nil, fmt.Errorf("cas: authentication failed: %s (%s)", payload.Failure.Message, payload.Failure.Code)
		}
		return nil, fmt.Errorf("cas: authentication failed")
	}

	id := &CASIdentity{
		Email:     payload.Success.Attributes.Email,
		FirstName: payload.Success.Attributes.FirstName,
		LastName:  payload.Success.Attributes.LastName,
	}
	if id.Email == "" {
		id.Email = payload.Success.User
	}
	return id, nil
}
