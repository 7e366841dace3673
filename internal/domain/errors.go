package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the tracking service is unreachable
	ErrServerOffline = errors.New("tracking service is unreachable")

	// ErrAuthFailed indicates the bearer token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrAlreadyFollowing indicates the server rejected a duplicate follow
	ErrAlreadyFollowing = errors.New("already following this title")

	// ErrFollowNotFound indicates the requested follow does not exist server-side
	ErrFollowNotFound = errors.New("follow not found")

	// ErrItemNotFound indicates the catalog has no title with the given id
	ErrItemNotFound = errors.New("catalog title not found")
)
