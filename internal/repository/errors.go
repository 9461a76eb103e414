package repository

import "errors"

var (
	// ErrUserNotFound is returned when the target user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrLogNotFound is returned when a notification log does not exist or
	// does not belong to the requesting user.
	ErrLogNotFound = errors.New("notification log not found")

	// ErrInvalidBulkRequest is returned when a bulk operation receives an
	// empty id set.
	ErrInvalidBulkRequest = errors.New("invalid bulk request: empty id set")
)
