package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for requests with no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a valid session whose role cannot perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfDelete marks an admin trying to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
