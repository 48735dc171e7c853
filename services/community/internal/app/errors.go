package app

import (
	"errors"
	"fmt"
)

// Messages are shown to clients as-is.
var (
	ErrUsernameTaken = errors.New("Username already registered")

	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials      = errors.New("Invalid username or password")
	ErrInvalidAdminCredentials = errors.New("Invalid admin credentials")

	ErrTokenExpired = errors.New("Token has expired")
	ErrInvalidToken = errors.New("Could not validate credentials")
	ErrUserNotFound = errors.New("User not found")

	ErrForbidden = errors.New("Only admins and founders can create announcements")
)

// ValidationError reports a request field the app cannot accept.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalidField(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
