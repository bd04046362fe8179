package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrUserNotFound is returned when a verified token points at a deleted account.
	ErrUserNotFound = errors.New("user not found")
	// ErrRestaurantNotFound is returned when joining an unknown restaurant.
	ErrRestaurantNotFound = errors.New("restaurant not found")
	// ErrForbidden is returned when the actor may not perform the action.
	ErrForbidden = errors.New("access denied")
)

// ValidationError reports bad input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TooManyAttemptsError is returned when login throttling kicks in.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}
