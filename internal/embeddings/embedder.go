package embeddings

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding service could not be reached or
// returned a malformed payload. Callers own the retry policy; embedders never
// retry internally.
var ErrUnavailable = errors.New("embedding service unavailable")

// Intent declares what an embedding will be used for. Some models produce
// different vector geometry for stored documents versus search queries, so
// the intent is part of the contract rather than an implementation detail.
type Intent string

const (
	IntentDocument Intent = "document"
	IntentQuery    Intent = "query"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts with the given intent.
	Embed(ctx context.Context, texts []string, intent Intent) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
