// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios: ErrForbidden means
// the current user is not the owner of the listing they tried to change,
// while ErrListingNotFound is a definitive "no such document" answer that
// callers must treat differently from a transient store failure.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// listing they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrListingNotFound is returned when a listing id does not exist in the
// store. Handlers translate this into HTTP 404.
var ErrListingNotFound = errors.New("listing not found")

// ErrEmailExists is returned when registering with an email that is
// already taken. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
