package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/hoststack/concierge/internal/embeddings"
	"github.com/hoststack/concierge/internal/properties"
	"github.com/hoststack/concierge/internal/vectordb"
)

// hashEmbedder produces deterministic normalized vectors so identical texts
// always land on identical embeddings, regardless of intent.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, texts []string, _ embeddings.Intent) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 8)
		for j, r := range t {
			v[j%8] += float32(r % 31)
		}
		var norm float32
		for _, x := range v {
			norm += x * x
		}
		if norm == 0 {
			v[0] = 1
		} else {
			inv := 1 / sqrt32(norm)
			for j := range v {
				v[j] *= inv
			}
		}
		out[i] = v
	}
	return out, nil
}

func sqrt32(x float32) float32 {
	// Newton iterations are plenty for test vectors.
	guess := x
	for i := 0; i < 20; i++ {
		guess = (guess + x/guess) / 2
	}
	return guess
}

func (hashEmbedder) Dimensions() int { return 8 }
func (hashEmbedder) Name() string    { return "hash" }

func newTestEngine(t *testing.T, provider *fakeProvider) (*Engine, vectordb.Store) {
	t.Helper()
	embedder := hashEmbedder{}
	store := vectordb.NewChromemStore(t.TempDir(), embedder)
	if err := store.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	retriever := NewRetriever(embedder, store, 5, nil)
	composer := NewComposer(provider, "m", 400, 0.4, 10, nil)
	resolver := properties.New(nil, properties.DefaultCityRules, "", "the local area")
	return NewEngine(retriever, composer, resolver, nil), store
}

func seed(t *testing.T, store vectordb.Store, propertyID string, texts ...string) {
	t.Helper()
	embedder := hashEmbedder{}
	vectors, err := embedder.Embed(context.Background(), texts, embeddings.IntentDocument)
	if err != nil {
		t.Fatalf("embedding seed texts: %v", err)
	}
	chunks := make([]vectordb.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = vectordb.Chunk{
			ID:         vectordb.ChunkID("seed.txt", i),
			PropertyID: propertyID,
			SourcePath: "seed.txt",
			ChunkIndex: i,
			Text:       text,
			Vector:     vectors[i],
		}
	}
	if err := store.Upsert(context.Background(), propertyID, chunks); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}

func TestEngineAnswerUsesPropertyContext(t *testing.T) {
	provider := &fakeProvider{content: "The wifi password is pass1."}
	engine, store := newTestEngine(t, provider)
	seed(t, store, "villa_1", "Wifi: net1 / pass1.")

	answer := engine.Answer(context.Background(), "villa_1", "what is the wifi password", nil)

	if answer.ChunksUsed == 0 {
		t.Fatal("expected retrieved context")
	}
	if answer.Intent != IntentPropertySpecific {
		t.Errorf("intent = %v, want property_specific", answer.Intent)
	}
	system := provider.lastReq.Messages[0].Content
	if !strings.Contains(system, "pass1") {
		t.Errorf("retrieved chunk missing from prompt:\n%s", system)
	}
}

func TestEngineAnswerScopedToProperty(t *testing.T) {
	provider := &fakeProvider{content: "I don't have that detail."}
	engine, store := newTestEngine(t, provider)
	seed(t, store, "villa_1", "Wifi: net1 / pass1.")

	answer := engine.Answer(context.Background(), "villa_2", "what is the wifi password", nil)

	if answer.ChunksUsed != 0 {
		t.Fatalf("context crossed properties: %d chunks", answer.ChunksUsed)
	}
	system := provider.lastReq.Messages[0].Content
	if strings.Contains(system, "pass1") {
		t.Errorf("another property's chunk leaked into the prompt:\n%s", system)
	}
	if !strings.Contains(system, NoContextSentinel) {
		t.Errorf("prompt missing no-context sentinel:\n%s", system)
	}
}

func TestEngineAnswerEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeProvider{content: "ok"})
	answer := engine.Answer(context.Background(), "villa_1", "   ", nil)
	if answer.Text != ClarifyMessage {
		t.Errorf("empty query answer = %q", answer.Text)
	}
}

func TestEngineAnswerAlwaysNonEmpty(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeProvider{content: ""})
	answer := engine.Answer(context.Background(), "villa_1", "anything at all", nil)
	if strings.TrimSpace(answer.Text) == "" {
		t.Error("engine returned an empty answer")
	}
}

func TestEngineAnswerResolvesCity(t *testing.T) {
	provider := &fakeProvider{content: "Try the night market."}
	engine, _ := newTestEngine(t, provider)

	engine.Answer(context.Background(), "villa_canggu_3", "any good restaurants nearby?", nil)

	system := provider.lastReq.Messages[0].Content
	if !strings.Contains(system, "Bali") {
		t.Errorf("city not resolved into the prompt:\n%s", system)
	}
}
