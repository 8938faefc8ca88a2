package rag

import "strings"

// referentialWords are pronouns that usually point back at an earlier turn.
// A query containing one of these as a standalone word is unlikely to embed
// well on its own.
var referentialWords = map[string]bool{
	"it": true, "that": true, "this": true, "they": true,
	"them": true, "there": true, "those": true, "these": true,
}

// expansionTerms pad very short queries with neutral vocabulary so the
// embedding has something to latch onto.
const expansionTerms = "property stay details"

// shortQueryTokens is the token count at or below which a query gets padded.
const shortQueryTokens = 3

// Rewrite expands a short or referential query using recent conversation
// turns to improve retrieval recall. This is a best-effort heuristic, not a
// correctness guarantee: the rewritten query is only ever used for embedding,
// never shown to the guest or the generation model.
func Rewrite(query string, history []Turn) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	tokens := strings.Fields(query)

	if containsReferential(tokens) {
		if prev := lastUserTurn(history); prev != "" {
			return "Previous question: " + prev + "\n" + query
		}
	}

	if len(tokens) <= shortQueryTokens {
		return query + " " + expansionTerms
	}

	return query
}

func containsReferential(tokens []string) bool {
	for _, tok := range tokens {
		word := strings.ToLower(strings.Trim(tok, ".,!?;:'\""))
		if referentialWords[word] {
			return true
		}
	}
	return false
}

func lastUserTurn(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == SenderUser {
			return strings.TrimSpace(history[i].Text)
		}
	}
	return ""
}
