package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/properties"
)

// Engine is the full question-answering pipeline for one deployment:
// rewrite, retrieve, classify, compose. It is safe for concurrent use.
type Engine struct {
	retriever *Retriever
	composer  *Composer
	resolver  *properties.Resolver
	logger    *zap.Logger
}

// Answer is the result of one pipeline run, with enough detail for callers
// that log or store per-question diagnostics.
type Answer struct {
	Text       string
	Intent     IntentClass
	ChunksUsed int
	Rewritten  string
}

// NewEngine wires a retriever, composer and property resolver into an Engine.
func NewEngine(retriever *Retriever, composer *Composer, resolver *properties.Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{retriever: retriever, composer: composer, resolver: resolver, logger: logger}
}

// Answer runs the pipeline for one guest question scoped to propertyID.
// history is the caller's recent conversation window, oldest first; it is
// read but never mutated. The returned Text is always non-empty.
func (e *Engine) Answer(ctx context.Context, propertyID, query string, history []Turn) Answer {
	query = strings.TrimSpace(query)
	if query == "" {
		return Answer{Text: ClarifyMessage, Intent: IntentOtherGeneral}
	}

	rewritten := Rewrite(query, history)
	chunks := e.retriever.Retrieve(ctx, propertyID, rewritten)
	intent := Classify(query, len(chunks) > 0)
	city := e.resolver.CityFor(propertyID)

	text := e.composer.Compose(ctx, query, chunks, city, history)

	e.logger.Info("answered question",
		zap.String("property_id", propertyID),
		zap.String("intent", string(intent)),
		zap.Int("chunks", len(chunks)))

	return Answer{Text: text, Intent: intent, ChunksUsed: len(chunks), Rewritten: rewritten}
}
