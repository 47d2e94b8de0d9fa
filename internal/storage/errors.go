package storage

import "errors"

// ErrConflict is returned when an insert violates a uniqueness constraint.
var ErrConflict = errors.New("storage: conflict")
