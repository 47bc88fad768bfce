package types

import "errors"

var (
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidToken covers a missing, mismatched, already used or expired token.
	ErrInvalidToken = errors.New("invalid or already used token")

	// ErrTokenNotFound means the alert has no active token.
	ErrTokenNotFound = errors.New("no active verification token")
)
