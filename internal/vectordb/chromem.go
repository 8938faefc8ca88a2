package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/hoststack/concierge/internal/embeddings"
)

const snapshotName = "chromem.gob.gz"

// collectionName returns the chromem collection holding one property's
// chunks. Using one collection per property gives strict isolation and makes
// DeleteAll a single atomic collection drop: a query racing a deletion sees
// either the old collection or none at all.
func collectionName(propertyID string) string {
	return "property_" + propertyID
}

// ChromemStore implements Store using chromem-go with one collection per
// property, persisted as a single snapshot file under dataDir.
type ChromemStore struct {
	db        *chromem.DB
	dataDir   string
	embedFunc chromem.EmbeddingFunc

	mu    sync.Mutex
	ready bool
}

// NewChromemStore creates a store that persists under dataDir. The embedder
// is only used as chromem's fallback embedding function; normal operation
// always supplies precomputed vectors.
func NewChromemStore(dataDir string, embedder embeddings.Embedder) *ChromemStore {
	return &ChromemStore{
		db:        chromem.NewDB(),
		dataDir:   dataDir,
		embedFunc: embeddings.ToChromemFunc(embedder, embeddings.IntentDocument),
	}
}

// EnsureReady creates the data directory and loads a prior snapshot if one
// exists. The first success is cached; failures are not, so a transient
// filesystem problem is retried on the next use.
func (s *ChromemStore) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w: %w", ErrUnavailable, err)
	}

	path := filepath.Join(s.dataDir, snapshotName)
	if _, err := os.Stat(path); err == nil {
		if err := s.db.ImportFromFile(path, ""); err != nil {
			return fmt.Errorf("loading index snapshot %s: %w: %w", path, ErrUnavailable, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("probing index snapshot %s: %w: %w", path, ErrUnavailable, err)
	}

	s.ready = true
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, propertyID string, chunks []Chunk) error {
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	col, err := s.db.GetOrCreateCollection(collectionName(propertyID), nil, s.embedFunc)
	if err != nil {
		return fmt.Errorf("open collection for %s: %w", propertyID, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		id := c.ID
		if id == "" {
			id = ChunkID(c.SourcePath, c.ChunkIndex)
		}
		docs[i] = chromem.Document{
			ID:        id,
			Content:   c.Text,
			Embedding: c.Vector,
			Metadata: map[string]string{
				"property_id": propertyID,
				"source_path": c.SourcePath,
				"chunk_index": strconv.Itoa(c.ChunkIndex),
			},
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("upsert %d chunks for %s: %w", len(chunks), propertyID, err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, propertyID string, vector []float32, topK int) ([]Match, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	col := s.db.GetCollection(collectionName(propertyID), s.embedFunc)
	if col == nil {
		// No documents were ever ingested for this property.
		return nil, nil
	}

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection for %s: %w", propertyID, err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			ChunkID:    r.ID,
			Score:      r.Similarity,
			Text:       r.Content,
			SourcePath: r.Metadata["source_path"],
			ChunkIndex: parseChunkIndex(r.Metadata["chunk_index"]),
		}
	}
	return matches, nil
}

func (s *ChromemStore) DeleteAll(ctx context.Context, propertyID string) error {
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}
	if err := s.db.DeleteCollection(collectionName(propertyID)); err != nil {
		return fmt.Errorf("delete collection for %s: %w", propertyID, err)
	}
	return nil
}

func (s *ChromemStore) Count(propertyID string) int {
	col := s.db.GetCollection(collectionName(propertyID), s.embedFunc)
	if col == nil {
		return 0
	}
	return col.Count()
}

func (s *ChromemStore) Persist(ctx context.Context) error {
	if err := s.EnsureReady(ctx); err != nil {
		return err
	}
	path := filepath.Join(s.dataDir, snapshotName)
	if err := s.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("writing index snapshot %s: %w", path, err)
	}
	return nil
}
