package drugquery

import "errors"

var (
	// ErrNotInitialized reports a query attempted before any successful
	// database build.
	ErrNotInitialized = errors.New("drug database not initialized")

	// ErrNotFound reports a lookup whose key matched nothing in the
	// database.
	ErrNotFound = errors.New("not found")
)
