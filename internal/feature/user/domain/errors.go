// Package domain defines domain-level errors for the user feature.
package domain

import "recipe_backend/internal/shared/apperr"

// Domain errors for account and token operations.
// Each wraps an apperr kind so the transport layer can pick the status code.
var (
	// ErrEmailRequired is returned when creating a user without an email address.
	ErrEmailRequired = apperr.FieldValidation("email", "email address is required")

	// ErrEmailAlreadyExists is returned when the normalized email is already registered.
	ErrEmailAlreadyExists = apperr.FieldValidation("email", "user with this email already exists")

	// ErrPasswordTooShort is returned when a password is below the minimum length.
	ErrPasswordTooShort = apperr.FieldValidation("password", "password must be at least 5 characters long")

	// ErrPasswordTooLong is returned when a password exceeds the 72 bytes bcrypt can hash.
	ErrPasswordTooLong = apperr.FieldValidation("password", "password must be at most 72 bytes long")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = apperr.NotFound("user not found")

	// ErrInvalidCredentials is returned when email or password is wrong, or the user is inactive.
	ErrInvalidCredentials = apperr.Authentication("unable to authenticate with provided credentials")

	// ErrSessionNotFound is returned when a token's session does not exist.
	ErrSessionNotFound = apperr.Authentication("session not found")

	// ErrInvalidToken is returned for malformed, expired or revoked tokens.
	ErrInvalidToken = apperr.Authentication("invalid token")
)
