package vectordb

import (
	"context"
	"math"
	"testing"
)

// deterministicVector derives a normalized vector from the text so identical
// strings always embed identically. Tests supply these precomputed vectors
// directly; the store never needs a live embedding service.
func deterministicVector(text string, dims int) []float32 {
	v := make([]float32, dims)
	for i, r := range text {
		v[i%dims] += float32(r)
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	s := NewChromemStore(t.TempDir(), nil)
	if err := s.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	return s
}

func testChunk(propertyID, sourcePath string, index int, text string) Chunk {
	return Chunk{
		ID:         ChunkID(sourcePath, index),
		PropertyID: propertyID,
		SourcePath: sourcePath,
		ChunkIndex: index,
		Text:       text,
		Vector:     deterministicVector(text, 8),
	}
}

func TestUpsertAndQuery(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []Chunk{
		testChunk("villa_1", "wifi.txt", 0, "Wifi network is net1, password pass1"),
		testChunk("villa_1", "pool.txt", 0, "The pool is open 8am to 8pm"),
	}
	if err := s.Upsert(ctx, "villa_1", chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if got := s.Count("villa_1"); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}

	matches, err := s.Query(ctx, "villa_1", deterministicVector("Wifi network is net1, password pass1", 8), 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches, got none")
	}
	if matches[0].Text != "Wifi network is net1, password pass1" {
		t.Errorf("top match = %q, want the wifi chunk", matches[0].Text)
	}
	if matches[0].SourcePath != "wifi.txt" || matches[0].ChunkIndex != 0 {
		t.Errorf("top match metadata = %q/%d", matches[0].SourcePath, matches[0].ChunkIndex)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunk := testChunk("villa_1", "wifi.txt", 0, "Wifi password is pass1")
	for i := 0; i < 3; i++ {
		if err := s.Upsert(ctx, "villa_1", []Chunk{chunk}); err != nil {
			t.Fatalf("Upsert round %d: %v", i, err)
		}
	}
	if got := s.Count("villa_1"); got != 1 {
		t.Errorf("Count after re-upsert = %d, want 1", got)
	}
}

func TestQueryNeverCrossesProperties(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	text := "The door code is 4821"
	if err := s.Upsert(ctx, "villa_1", []Chunk{testChunk("villa_1", "door.txt", 0, text)}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := s.Query(ctx, "villa_2", deterministicVector(text, 8), 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("query against another property returned %d matches, want 0", len(matches))
	}
}

func TestQueryEmptyPropertyReturnsNoMatches(t *testing.T) {
	s := newTestStore(t)
	matches, err := s.Query(context.Background(), "nobody", deterministicVector("anything", 8), 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches, got %v", matches)
	}
}

func TestQueryClampsTopK(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "villa_1", []Chunk{testChunk("villa_1", "a.txt", 0, "only one chunk here")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	matches, err := s.Query(ctx, "villa_1", deterministicVector("only one chunk here", 8), 10)
	if err != nil {
		t.Fatalf("Query with topK above count: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}
}

func TestDeleteAllRemovesOnlyOneProperty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, "villa_1", []Chunk{testChunk("villa_1", "a.txt", 0, "villa one facts here")}); err != nil {
		t.Fatalf("Upsert villa_1: %v", err)
	}
	if err := s.Upsert(ctx, "villa_2", []Chunk{testChunk("villa_2", "b.txt", 0, "villa two facts here")}); err != nil {
		t.Fatalf("Upsert villa_2: %v", err)
	}

	if err := s.DeleteAll(ctx, "villa_1"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if got := s.Count("villa_1"); got != 0 {
		t.Errorf("villa_1 count after delete = %d, want 0", got)
	}
	if got := s.Count("villa_2"); got != 1 {
		t.Errorf("villa_2 count after deleting villa_1 = %d, want 1", got)
	}
}

func TestPersistAndReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := NewChromemStore(dir, nil)
	if err := s.EnsureReady(ctx); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if err := s.Upsert(ctx, "villa_1", []Chunk{testChunk("villa_1", "a.txt", 0, "check in is at 2pm")}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reloaded := NewChromemStore(dir, nil)
	if err := reloaded.EnsureReady(ctx); err != nil {
		t.Fatalf("EnsureReady after reload: %v", err)
	}
	if got := reloaded.Count("villa_1"); got != 1 {
		t.Errorf("reloaded count = %d, want 1", got)
	}
}

func TestChunkIDIsDeterministic(t *testing.T) {
	a := ChunkID("guide.txt", 3)
	b := ChunkID("guide.txt", 3)
	if a != b {
		t.Errorf("ChunkID not deterministic: %q vs %q", a, b)
	}
	if a == ChunkID("guide.txt", 4) {
		t.Error("different indexes produced the same id")
	}
}
