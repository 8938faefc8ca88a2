package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hoststack/concierge/internal/embeddings"
	"github.com/hoststack/concierge/internal/vectordb"
)

// unitEmbedder maps every text to a deterministic unit vector.
type unitEmbedder struct {
	failAll bool
}

func (e unitEmbedder) Embed(_ context.Context, texts []string, _ embeddings.Intent) ([][]float32, error) {
	if e.failAll {
		return nil, errors.New("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 4)
		for j, r := range t {
			v[j%4] += float32(r % 17)
		}
		var sum float32
		for _, x := range v {
			sum += x * x
		}
		if sum == 0 {
			v[0] = 1
		} else {
			// Rough normalization is enough for cosine ranking in tests.
			for j := range v {
				v[j] /= sum
			}
		}
		out[i] = v
	}
	return out, nil
}

func (unitEmbedder) Dimensions() int { return 4 }
func (unitEmbedder) Name() string    { return "unit" }

func newTestIndex(t *testing.T) vectordb.Store {
	t.Helper()
	store := vectordb.NewChromemStore(t.TempDir(), unitEmbedder{})
	if err := store.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	return store
}

func TestIngestSingleShortDocument(t *testing.T) {
	store := newTestIndex(t)
	p := NewPipeline(unitEmbedder{}, store, 500, 50, nil)

	docs := []Document{{PropertyID: "p1", SourcePath: "wifi.txt", Text: "Wifi: net1 / pass1."}}
	sum, err := p.Ingest(context.Background(), "p1", docs, false)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if sum.ChunksProcessed != 1 {
		t.Errorf("chunks = %d, want 1", sum.ChunksProcessed)
	}
	if sum.VectorsUpserted != 1 {
		t.Errorf("vectors = %d, want 1", sum.VectorsUpserted)
	}
	if got := store.Count("p1"); got != 1 {
		t.Errorf("stored count = %d, want 1", got)
	}
}

func TestIngestedChunkIsRetrievable(t *testing.T) {
	store := newTestIndex(t)
	embedder := unitEmbedder{}
	p := NewPipeline(embedder, store, 500, 50, nil)

	text := "Wifi: net1 / pass1."
	docs := []Document{{PropertyID: "p1", SourcePath: "wifi.txt", Text: text}}
	if _, err := p.Ingest(context.Background(), "p1", docs, false); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	vectors, err := embedder.Embed(context.Background(), []string{"what is the wifi password"}, embeddings.IntentQuery)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	matches, err := store.Query(context.Background(), "p1", vectors[0], 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].Text != text {
		t.Errorf("matches = %+v, want the wifi chunk", matches)
	}

	// The same query against another property finds nothing.
	other, err := store.Query(context.Background(), "p2", vectors[0], 5)
	if err != nil {
		t.Fatalf("Query p2: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("another property returned %d matches, want 0", len(other))
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newTestIndex(t)
	p := NewPipeline(unitEmbedder{}, store, 500, 50, nil)

	docs := []Document{{PropertyID: "p1", SourcePath: "guide.txt", Text: "Checkout is at 11am, please leave the keys on the table."}}
	for i := 0; i < 3; i++ {
		if _, err := p.Ingest(context.Background(), "p1", docs, false); err != nil {
			t.Fatalf("Ingest round %d: %v", i, err)
		}
	}
	if got := store.Count("p1"); got != 1 {
		t.Errorf("count after re-ingest = %d, want 1", got)
	}
}

func TestIngestClearFirstReplaces(t *testing.T) {
	store := newTestIndex(t)
	p := NewPipeline(unitEmbedder{}, store, 500, 50, nil)
	ctx := context.Background()

	old := []Document{{PropertyID: "p1", SourcePath: "old.txt", Text: "The old wifi password was oldpass123."}}
	if _, err := p.Ingest(ctx, "p1", old, false); err != nil {
		t.Fatalf("Ingest old: %v", err)
	}

	fresh := []Document{{PropertyID: "p1", SourcePath: "new.txt", Text: "The new wifi password is newpass456."}}
	if _, err := p.Ingest(ctx, "p1", fresh, true); err != nil {
		t.Fatalf("Ingest fresh: %v", err)
	}

	if got := store.Count("p1"); got != 1 {
		t.Errorf("count after clear = %d, want 1", got)
	}
}

func TestIngestEmbeddingFailureSkipsNotAborts(t *testing.T) {
	store := newTestIndex(t)
	p := NewPipeline(unitEmbedder{failAll: true}, store, 500, 50, nil)

	docs := []Document{{PropertyID: "p1", SourcePath: "a.txt", Text: "Some property facts worth indexing here."}}
	sum, err := p.Ingest(context.Background(), "p1", docs, false)
	if err != nil {
		t.Fatalf("Ingest should not abort on embedding failure: %v", err)
	}
	if sum.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", sum.Skipped)
	}
	if sum.VectorsUpserted != 0 {
		t.Errorf("vectors = %d, want 0", sum.VectorsUpserted)
	}
}

// poisonEmbedder rejects any call that includes the poison text, so a batch
// containing it fails as a whole but the other texts embed fine one by one.
type poisonEmbedder struct {
	inner  unitEmbedder
	poison string
}

func (e poisonEmbedder) Embed(ctx context.Context, texts []string, intent embeddings.Intent) ([][]float32, error) {
	for _, t := range texts {
		if t == e.poison {
			return nil, errors.New("input rejected")
		}
	}
	return e.inner.Embed(ctx, texts, intent)
}

func (e poisonEmbedder) Dimensions() int { return e.inner.Dimensions() }
func (e poisonEmbedder) Name() string    { return "poison" }

func TestIngestBatchFailureSkipsOnlyBadChunks(t *testing.T) {
	store := newTestIndex(t)
	bad := "This one text the embedding service refuses."
	p := NewPipeline(poisonEmbedder{poison: bad}, store, 500, 50, nil)

	docs := []Document{
		{PropertyID: "p1", SourcePath: "a.txt", Text: "Wifi: net1 / pass1."},
		{PropertyID: "p1", SourcePath: "b.txt", Text: bad},
		{PropertyID: "p1", SourcePath: "c.txt", Text: "Pool opens at 8am."},
	}
	sum, err := p.Ingest(context.Background(), "p1", docs, false)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if sum.Skipped != 1 {
		t.Errorf("skipped = %d, want only the rejected chunk", sum.Skipped)
	}
	if sum.VectorsUpserted != 2 {
		t.Errorf("vectors = %d, want 2", sum.VectorsUpserted)
	}
	if got := store.Count("p1"); got != 2 {
		t.Errorf("stored count = %d, want 2", got)
	}
}

func TestSanitizePropertyID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Villa Sunset #2", "villa_sunset_2"},
		{"  bali--nelayan  ", "bali_nelayan"},
		{"___x___", "x"},
		{"Already_ok", "already_ok"},
	}
	for _, tc := range cases {
		if got := SanitizePropertyID(tc.in); got != tc.want {
			t.Errorf("SanitizePropertyID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadDirGroupsByProperty(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "villa_1", "wifi.txt"), "Wifi: net1 / pass1.")
	mustWrite(t, filepath.Join(dir, "villa_1", "pool.txt"), "Pool opens at 8am.")
	mustWrite(t, filepath.Join(dir, "villa_2", "guide.txt"), "Checkout at 11am.")
	mustWrite(t, filepath.Join(dir, "villa_1", "notes.md"), "not a txt file")

	docs, err := LoadDir(dir, "", "")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("loaded %d docs, want 3", len(docs))
	}

	byProperty := make(map[string]int)
	for _, d := range docs {
		byProperty[d.PropertyID]++
	}
	if byProperty["villa_1"] != 2 || byProperty["villa_2"] != 1 {
		t.Errorf("grouping = %v", byProperty)
	}
}

func TestLoadDirExclude(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "villa_1", "wifi.txt"), "keep")
	mustWrite(t, filepath.Join(dir, "villa_1", "draft.txt"), "drop")

	docs, err := LoadDir(dir, "", "**/draft.txt")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].SourcePath != "villa_1/wifi.txt" {
		t.Errorf("docs = %+v", docs)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
