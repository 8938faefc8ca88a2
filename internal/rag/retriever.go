package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/embeddings"
	"github.com/hoststack/concierge/internal/vectordb"
)

// DefaultTopK is the canonical number of chunks retrieved per query.
const DefaultTopK = 5

// Retriever embeds a rewritten query and fetches the most similar chunks for
// one property. Any embedding or index failure degrades to an empty context
// with a logged diagnostic; the guest-facing response must never abort on a
// retrieval problem.
type Retriever struct {
	embedder embeddings.Embedder
	index    vectordb.Store
	topK     int
	logger   *zap.Logger
}

// NewRetriever creates a Retriever. topK <= 0 selects DefaultTopK.
func NewRetriever(embedder embeddings.Embedder, index vectordb.Store, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, index: index, topK: topK, logger: logger}
}

// Retrieve returns the ordered context chunk texts for the query, scoped to
// propertyID. An empty slice means "no information found" and is a valid,
// meaningful state distinct from an error, which is logged and swallowed.
func (r *Retriever) Retrieve(ctx context.Context, propertyID, rewrittenQuery string) []string {
	vectors, err := r.embedder.Embed(ctx, []string{rewrittenQuery}, embeddings.IntentQuery)
	if err != nil || len(vectors) == 0 {
		r.logger.Warn("query embedding failed, degrading to empty context",
			zap.String("property_id", propertyID), zap.Error(err))
		return nil
	}

	matches, err := r.index.Query(ctx, propertyID, vectors[0], r.topK)
	if err != nil {
		r.logger.Warn("index query failed, degrading to empty context",
			zap.String("property_id", propertyID), zap.Error(err))
		return nil
	}

	var chunks []string
	for _, m := range matches {
		if text := strings.TrimSpace(m.Text); text != "" {
			chunks = append(chunks, text)
		}
	}

	r.logger.Debug("retrieved context",
		zap.String("property_id", propertyID), zap.Int("chunks", len(chunks)))
	return chunks
}
