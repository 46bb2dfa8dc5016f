package storage

import (
	"context"
	"errors"
)

// Storage is a namespaced string key-value store holding serialized snapshots.
// Consumers define what the value means; backends only move strings.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("storage: key not found")
