// Package services holds the application services. Data access goes through
// the repository interfaces declared here; the Mongo implementations live in
// app/repositories, and tests substitute in-memory fakes.
package services

import "errors"

// Error taxonomy. Services wrap these sentinels with context via
// fmt.Errorf("...: %w", Err...); controllers translate them to HTTP statuses
// with errors.Is.
var (
	// ErrValidation — missing or malformed input, detected before any
	// store access.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound — a referenced user, product, or order does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict — a business rule rejected the request (duplicate email,
	// duplicate review, self-review, own-product cart add, re-verifying a
	// delivered order).
	ErrConflict = errors.New("conflict")

	// ErrAuthentication — bad credentials or a failed human-verification
	// check.
	ErrAuthentication = errors.New("authentication failed")

	// ErrUpstream — an external collaborator (SSO, captcha, generative-text
	// provider) failed or answered garbage.
	ErrUpstream = errors.New("upstream failure")
)
