package vectordb

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the index could not be opened or loaded.
var ErrUnavailable = errors.New("vector index unavailable")

// Store defines the property-scoped vector index. Every stored chunk and
// every query carries exactly one property identifier; results never cross
// properties.
type Store interface {
	// EnsureReady performs a lazy one-time readiness probe. Success is
	// cached; a failed probe is retried on the next call.
	EnsureReady(ctx context.Context) error

	// Upsert writes chunks for a property. Re-upserting the same chunk ID
	// overwrites the stored vector and metadata.
	Upsert(ctx context.Context, propertyID string, chunks []Chunk) error

	// Query returns up to topK matches for the property, ordered by
	// descending similarity. An empty result is not an error.
	Query(ctx context.Context, propertyID string, vector []float32, topK int) ([]Match, error)

	// DeleteAll removes every chunk stored for the property.
	DeleteAll(ctx context.Context, propertyID string) error

	// Count returns the number of chunks stored for the property.
	Count(propertyID string) int

	// Persist saves the index to its data directory.
	Persist(ctx context.Context) error
}
