package memo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Cache is a read-through cache of values of type T stored under dir.
type Cache[T any] struct {
	dir    string
	codec  Codec
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	codec  Codec
	logger *slog.Logger
}

// WithCodec sets the serialization format. The default is JSONCodec.
func WithCodec(codec Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithLogger sets the logger used to report hits and misses.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Cache rooted at dir. The directory is created on first write.
func New[T any](dir string, opts ...Option) *Cache[T] {
	o := options{codec: JSONCodec{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Cache[T]{
		dir:    dir,
		codec:  o.codec,
		logger: o.logger,
	}
}

// Path returns the file that backs key.
func (c *Cache[T]) Path(key string) string {
	return filepath.Join(c.dir, key+c.codec.Extension())
}

// GetOrCompute returns the cached value for key. On a miss it calls compute,
// writes the result to disk and returns it. compute is never called on a hit.
//
// A compute error is returned as is and nothing is written. A write error is
// returned even though a value was computed.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	if key == "" {
		return zero, ErrEmptyKey
	}

	path := c.Path(key)

	data, err := os.ReadFile(path) //nolint:gosec // path is built from the cache directory and a fixed key
	switch {
	case err == nil:
		var value T
		if err := c.codec.Unmarshal(data, &value); err != nil {
			return zero, fmt.Errorf("failed to decode cache file %s: %w", path, err)
		}
		c.logger.Debug("cache hit", "key", key, "path", path)
		return value, nil
	case !errors.Is(err, fs.ErrNotExist):
		return zero, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}

	c.logger.Debug("cache miss", "key", key, "path", path)

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if err := c.write(path, value); err != nil {
		return zero, err
	}
	return value, nil
}

// Delete removes the file that backs key and reports whether it existed.
// Other files in the directory are left alone.
func (c *Cache[T]) Delete(key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	path := c.Path(key)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove cache file %s: %w", path, err)
	}
	c.logger.Debug("cache entry removed", "key", key, "path", path)
	return true, nil
}

// write encodes value into path through a temporary file so that an
// interrupted run never leaves a truncated cache file behind.
func (c *Cache[T]) write(path string, value T) error {
	data, err := c.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".memo-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
