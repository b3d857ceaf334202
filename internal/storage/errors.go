package storage

import "errors"

// ErrNotFound is returned when a section or translation does not exist.
var ErrNotFound = errors.New("not found")
