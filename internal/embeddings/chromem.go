package embeddings

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
)

// ToChromemFunc converts an Embedder into a chromem.EmbeddingFunc with a
// fixed intent. chromem-go expects a function that embeds a single text at a
// time; the store only falls back to it when a document is added without a
// precomputed vector.
func ToChromemFunc(e Embedder, intent Intent) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if e == nil {
			return nil, ErrUnavailable
		}
		results, err := e.Embed(ctx, []string{text}, intent)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		return results[0], nil
	}
}
