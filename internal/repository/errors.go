// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the auth
// service and the handlers to distinguish between failure scenarios without
// depending on a particular storage driver.
package repository

import "errors"

// ErrNotFound is returned when no row matches a lookup. For ownership-scoped
// queries (highscores) it also covers rows owned by someone else, so callers
// cannot probe other users' records.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned by Create when the username is taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned by Create when the email is taken.
var ErrEmailExists = errors.New("email already exists")
