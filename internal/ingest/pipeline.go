package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/chunker"
	"github.com/hoststack/concierge/internal/embeddings"
	"github.com/hoststack/concierge/internal/vectordb"
)

// embedBatchSize bounds how many chunks go to the embedding service per call.
const embedBatchSize = 100

// Summary reports what one ingestion run did.
type Summary struct {
	Documents       int
	ChunksProcessed int
	VectorsUpserted int
	Skipped         int
}

// Pipeline chunks documents, embeds them with document intent and writes the
// vectors to the index. Per-chunk embedding failures are logged and skipped;
// the run keeps going so one bad batch does not poison a full reindex.
type Pipeline struct {
	chunkOpts chunker.Options
	embedder  embeddings.Embedder
	index     vectordb.Store
	logger    *zap.Logger

	// Progress, when set, is called after each embedded batch with the
	// number of chunks completed so far.
	Progress func(done, total int)
}

// NewPipeline creates a Pipeline. chunkSize and chunkOverlap of zero select
// the chunker defaults.
func NewPipeline(embedder embeddings.Embedder, index vectordb.Store, chunkSize, chunkOverlap int, logger *zap.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = chunker.DefaultOverlap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		chunkOpts: chunker.Options{Size: chunkSize, Overlap: chunkOverlap},
		embedder:  embedder,
		index:     index,
		logger:    logger,
	}
}

// Ingest processes docs for one property. When clearFirst is set, the
// property's existing vectors are removed before any new ones are written, so
// a reindex replaces rather than accretes.
func (p *Pipeline) Ingest(ctx context.Context, propertyID string, docs []Document, clearFirst bool) (Summary, error) {
	var sum Summary

	if err := p.index.EnsureReady(ctx); err != nil {
		return sum, fmt.Errorf("index not ready: %w", err)
	}

	if clearFirst {
		if err := p.index.DeleteAll(ctx, propertyID); err != nil {
			return sum, fmt.Errorf("clearing property %s: %w", propertyID, err)
		}
	}

	var pending []vectordb.Chunk
	for _, doc := range docs {
		texts, err := chunker.Chunk(doc.Text, p.chunkOpts)
		if err != nil {
			return sum, fmt.Errorf("chunking %s: %w", doc.SourcePath, err)
		}
		sum.Documents++
		for i, text := range texts {
			pending = append(pending, vectordb.Chunk{
				ID:         vectordb.ChunkID(doc.SourcePath, i),
				PropertyID: propertyID,
				SourcePath: doc.SourcePath,
				ChunkIndex: i,
				Text:       text,
			})
		}
	}
	sum.ChunksProcessed = len(pending)

	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		embedded, skipped := p.embedBatch(ctx, propertyID, start, batch)
		sum.Skipped += skipped
		if len(embedded) == 0 {
			continue
		}

		if err := p.index.Upsert(ctx, propertyID, embedded); err != nil {
			p.logger.Warn("upsert batch failed, skipping",
				zap.String("property_id", propertyID),
				zap.Int("batch_start", start), zap.Error(err))
			sum.Skipped += len(embedded)
			continue
		}
		sum.VectorsUpserted += len(embedded)

		if p.Progress != nil {
			p.Progress(end, len(pending))
		}
	}

	p.logger.Info("ingestion complete",
		zap.String("property_id", propertyID),
		zap.Int("documents", sum.Documents),
		zap.Int("chunks", sum.ChunksProcessed),
		zap.Int("upserted", sum.VectorsUpserted),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// embedBatch embeds one batch of chunks and returns those that succeeded with
// their vectors filled in, plus the count of chunks skipped. When the batch
// call fails, each chunk is retried individually so one poisoned input does
// not discard its whole batch.
func (p *Pipeline) embedBatch(ctx context.Context, propertyID string, start int, batch []vectordb.Chunk) ([]vectordb.Chunk, int) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts, embeddings.IntentDocument)
	if err == nil && len(vectors) == len(batch) {
		for i := range batch {
			batch[i].Vector = vectors[i]
		}
		return batch, 0
	}

	p.logger.Warn("embedding batch failed, retrying chunks individually",
		zap.String("property_id", propertyID),
		zap.Int("batch_start", start), zap.Int("batch_len", len(batch)),
		zap.Error(err))

	embedded := make([]vectordb.Chunk, 0, len(batch))
	skipped := 0
	for i, c := range batch {
		vecs, err := p.embedder.Embed(ctx, []string{c.Text}, embeddings.IntentDocument)
		if err != nil || len(vecs) != 1 {
			p.logger.Warn("embedding chunk failed, skipping",
				zap.String("property_id", propertyID),
				zap.String("chunk_id", c.ID),
				zap.Int("batch_start", start), zap.Int("offset", i),
				zap.Error(err))
			skipped++
			continue
		}
		c.Vector = vecs[0]
		embedded = append(embedded, c)
	}
	return embedded, skipped
}
