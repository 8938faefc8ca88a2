// Package rag implements the property-scoped retrieval and answer
// composition pipeline: query rewriting, top-K retrieval, intent-guided
// prompt assembly, generation, and output sanitization.
package rag

// Sender identifies who produced a conversation turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Turn is one prior message in the conversation, oldest first. The pipeline
// treats history as read-only caller-supplied input, never as a system of
// record.
type Turn struct {
	Sender Sender
	Text   string
}

// IntentClass is the advisory classification of a guest question. It steers
// prompt assembly and fallback wording only; the grounding rules in the
// prompt itself are what the generation step enforces.
type IntentClass string

const (
	IntentPropertySpecific IntentClass = "property_specific"
	IntentLocationGeneral  IntentClass = "location_general"
	IntentOtherGeneral     IntentClass = "other_general"
)
