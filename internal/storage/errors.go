package storage

import "errors"

// ErrNotFound is returned by backends when no stored row matches the
// person being updated or deleted.
var ErrNotFound = errors.New("person not found in storage")
