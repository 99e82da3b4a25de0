package session

import (
	"context"
	"time"
)

// Store is the persistence backend for session values.
type Store interface {
	// Load returns the values for id. found is false for unknown or expired
	// sessions.
	Load(ctx context.Context, id string) (values map[string]any, found bool, err error)

	// Save persists the values for id with the given lifetime. A zero ttl
	// means the record does not expire.
	Save(ctx context.Context, id string, values map[string]any, ttl time.Duration) error

	// Delete removes the record for id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
