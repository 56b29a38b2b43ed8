package storage

import (
	"context"
	"time"
)

// ResponseCache stores raw upstream response bodies keyed by request signature
type ResponseCache interface {
	// Get returns the cached body and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a body for the given ttl
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error

	// Delete removes a single entry
	Delete(ctx context.Context, key string) error

	// Purge drops every cached response
	Purge(ctx context.Context) error

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error
}
