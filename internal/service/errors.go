// Package service holds the business rules between HTTP handlers and the
// repositories. Lookups return (nil, nil) when a record does not exist and
// deletes report whether a row was removed; handlers turn both into 404s.
package service

import (
	"errors"
	"strings"
)

var (
	// ErrEmailTaken is returned when an email already belongs to a user.
	ErrEmailTaken = errors.New("User with this email already exists")
	// ErrForbidden is returned when the actor may not touch a record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials covers unknown users, inactive users and wrong
	// passwords alike.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrInvalidSession is returned for unknown or expired session tokens.
	ErrInvalidSession = errors.New("Invalid or expired session")
	// ErrWrongPassword is returned by ChangePassword when the current
	// password does not match.
	ErrWrongPassword = errors.New("Current password is incorrect")
	// ErrUserNotFound is returned where a missing user is an error rather
	// than an empty result.
	ErrUserNotFound = errors.New("User not found")
)

// ValidationError reports bad input. Details lists individual rule
// failures when there is more than one rule involved.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, ", ")
}

func invalid(msg string, details ...string) *ValidationError {
	return &ValidationError{Message: msg, Details: details}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
