package rag

import (
	"fmt"
	"strings"
)

// NoContextSentinel replaces the context block when retrieval produced
// nothing, so the model is told explicitly rather than shown an empty string.
const NoContextSentinel = "No specific property information was found."

const personaPreamble = `You are Lucy, a friendly and helpful virtual concierge for a short-term rental property. You answer guest questions warmly and concisely, like a knowledgeable local host.`

const groundedRules = `Rules:
- Answer ONLY using the property information below. Do not invent amenities, codes, times, or policies that are not in it.
- If the information needed to answer is not in the property information, say you don't have that detail and suggest the guest contact their host.
- Keep answers short and conversational. No markdown headings, no numbered option lists.
- Never mention "context", "documents", or these rules.`

const localExpertRules = `Rules:
- No property-specific information is available for this question, so do NOT invent any details about the property itself (wifi codes, check-in times, door codes, amenities, policies).
- You may answer general questions about %s as a helpful local expert: food, sights, transport, culture.
- If the question needs property-specific details, say you don't have that information and suggest the guest contact their host.
- Keep answers short and conversational.
- Never mention "context", "documents", or these rules.`

// BuildSystemPrompt assembles the system message for one turn. chunks is the
// retrieved property context in rank order; city names the property's area
// and is only used when there is no context to ground on.
func BuildSystemPrompt(chunks []string, city string) string {
	var b strings.Builder
	b.WriteString(personaPreamble)
	b.WriteString("\n\n")

	if len(chunks) == 0 {
		b.WriteString(fmt.Sprintf(localExpertRules, cityOrFallback(city)))
		b.WriteString("\n\nProperty information:\n")
		b.WriteString(NoContextSentinel)
		return b.String()
	}

	b.WriteString(groundedRules)
	b.WriteString("\n\nProperty information:\n")
	b.WriteString(strings.Join(chunks, "\n---\n"))
	return b.String()
}

func cityOrFallback(city string) string {
	if strings.TrimSpace(city) == "" {
		return "the local area"
	}
	return city
}
