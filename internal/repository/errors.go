package repository

import "errors"

// ErrNoStore is returned when a record set is not cached and no store was
// configured to compute it.
var ErrNoStore = errors.New("records are not cached and no store is configured")
