package channels

import (
	"sync"

	"github.com/hoststack/concierge/internal/rag"
)

// HistoryWindow keeps a bounded, in-memory conversation window per sender.
// It is ephemeral by design: a restart forgets everything, and nothing here
// is ever persisted.
type HistoryWindow struct {
	mu      sync.Mutex
	turns   map[string][]rag.Turn
	maxSize int
}

// NewHistoryWindow creates a window keeping the last maxSize turns per
// sender. maxSize <= 0 disables history entirely.
func NewHistoryWindow(maxSize int) *HistoryWindow {
	return &HistoryWindow{turns: make(map[string][]rag.Turn), maxSize: maxSize}
}

// Get returns a copy of the sender's recent turns, oldest first.
func (h *HistoryWindow) Get(senderID string) []rag.Turn {
	if h.maxSize <= 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	stored := h.turns[senderID]
	if len(stored) == 0 {
		return nil
	}
	out := make([]rag.Turn, len(stored))
	copy(out, stored)
	return out
}

// Append records one turn for the sender, evicting the oldest when the
// window is full.
func (h *HistoryWindow) Append(senderID string, turn rag.Turn) {
	if h.maxSize <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	stored := append(h.turns[senderID], turn)
	if len(stored) > h.maxSize {
		stored = stored[len(stored)-h.maxSize:]
	}
	h.turns[senderID] = stored
}

// Reset drops the sender's history.
func (h *HistoryWindow) Reset(senderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, senderID)
}
