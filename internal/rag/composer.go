package rag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/llm"
)

// Fallback replies. Every failure mode maps to a fixed, human-readable
// message so the guest always receives something.
const (
	FallbackUnconfigured = "I'm sorry, I'm not fully configured to answer questions right now. Please contact support."
	FallbackProviderErr  = "Sorry, there was an error communicating with the AI. Please try again later."
	FallbackEmptyAnswer  = "Sorry, I received an unusual response. Please try again."
)

// Composer turns a query, retrieved context and conversation history into a
// sanitized guest-facing answer.
type Composer struct {
	provider      llm.Provider
	model         string
	maxTokens     int
	temperature   float64
	historyWindow int
	logger        *zap.Logger
}

// NewComposer creates a Composer. provider may be nil, in which case every
// call returns FallbackUnconfigured. historyWindow <= 0 disables history.
func NewComposer(provider llm.Provider, model string, maxTokens int, temperature float64, historyWindow int, logger *zap.Logger) *Composer {
	if maxTokens <= 0 {
		maxTokens = 400
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		provider:      provider,
		model:         model,
		maxTokens:     maxTokens,
		temperature:   temperature,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Compose generates the final answer. The returned string is always non-empty
// and already sanitized.
func (c *Composer) Compose(ctx context.Context, query string, chunks []string, city string, history []Turn) string {
	if c.provider == nil {
		return FallbackUnconfigured
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: BuildSystemPrompt(chunks, city)}}
	for _, t := range boundHistory(history, c.historyWindow) {
		role := llm.RoleUser
		if t.Sender == SenderAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warn("completion failed", zap.Error(err))
		return FallbackProviderErr
	}
	if strings.TrimSpace(resp.Content) == "" {
		c.logger.Warn("completion returned empty content", zap.String("model", c.model))
		return FallbackEmptyAnswer
	}

	return Sanitize(resp.Content)
}

// boundHistory keeps the most recent window turns.
func boundHistory(history []Turn, window int) []Turn {
	if window <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > window {
		return history[len(history)-window:]
	}
	return history
}
