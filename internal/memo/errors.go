package memo

import "errors"

var (
	// ErrUnknownCodec is returned by CodecByName for unsupported format names.
	ErrUnknownCodec = errors.New("unknown cache codec")

	// ErrEmptyKey is returned when a cache lookup is made with an empty key.
	// An empty key would make the cache file name equal to the extension.
	ErrEmptyKey = errors.New("cache key must not be empty")
)
