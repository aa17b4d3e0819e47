// Package kv provides the key-value storage backends the stores mirror
// their state to. The layout is two independent keys holding JSON: the
// active identity and the full event list.
package kv

import (
	"context"
	"errors"
)

// Persisted state layout.
const (
	// UserKey holds the JSON-encoded active identity.
	UserKey = "user"
	// EventsKey holds the JSON-encoded event list.
	EventsKey = "events"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is a minimal key-value port over opaque JSON bytes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
