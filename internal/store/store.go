// Package store provides the small durable key-value stores that keep
// session tokens and wizard fallbacks alive across process restarts
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Store is a string key-value store
type Store interface {
	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources
	Close() error
}

const (
	MemoryScheme = "memory://"
	redisScheme  = "redis://"
	redissScheme = "rediss://"
)

var (
	// ErrNotFound is returned by Get when a key has no value
	ErrNotFound = errors.New("key not found")

	// ErrOpenStore is returned when a store URL cannot be opened
	ErrOpenStore = errors.New("failed to open store")
)

// Open creates a Store from a URL. memory:// selects a process-local map,
// redis:// and rediss:// a Redis server, and any other scheme is opened as
// a gocloud.dev blob bucket (file://, mem://, s3://, gs://, azblob://).
// Keys are stored under the provided prefix
func Open(ctx context.Context, url, prefix string) (Store, error) {
	switch {
	case url == "" || url == MemoryScheme:
		return NewMemory(), nil
	case strings.HasPrefix(url, redisScheme),
		strings.HasPrefix(url, redissScheme):
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
		}
		return NewRedis(redis.NewClient(opts), prefix), nil
	default:
		s, err := NewBlob(ctx, url, prefix)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
		}
		return s, nil
	}
}
