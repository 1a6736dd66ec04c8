package store

import "errors"

var (
	// ErrUnknownDialect is returned when the configured driver name has no
	// query dialect.
	ErrUnknownDialect = errors.New("unknown store dialect")

	// ErrUnreachable is returned when the store cannot be opened or pinged.
	ErrUnreachable = errors.New("store unreachable")
)
