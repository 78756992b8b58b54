package domain

import "errors"

var (
	// ErrNotFound covers a missing user, product, or order: for order
	// lifecycle operations it also covers a no-op update, since the store
	// reports both the same way.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken         = errors.New("user already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidID          = errors.New("invalid identifier")

	// ErrWriteFailed is surfaced when an order write matches no document,
	// e.g. the target user vanished between lookup and append.
	ErrWriteFailed = errors.New("write failed")
)
