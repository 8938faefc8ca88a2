package rag

import "strings"

// locationWords signal a question about the surrounding area rather than the
// property itself: restaurants, transport, sights and the like.
var locationWords = []string{
	"restaurant", "restaurants", "eat", "food", "cafe", "coffee",
	"beach", "beaches", "bar", "bars", "club", "nightlife",
	"taxi", "transport", "bus", "train", "airport", "scooter", "rental",
	"visit", "see", "do", "attraction", "attractions", "tour", "tours",
	"temple", "museum", "market", "shopping", "shop",
	"nearby", "around", "area", "neighborhood", "town", "city",
	"weather", "hike", "hiking", "surf", "surfing", "massage", "spa",
}

// Classify labels a query given whether property context was retrieved. The
// label is advisory: it steers prompt selection but never blocks an answer.
// A non-empty context always wins, since retrieved chunks are scoped to the
// property and are the strongest signal the question is about it.
func Classify(query string, hasContext bool) IntentClass {
	if hasContext {
		return IntentPropertySpecific
	}
	lower := strings.ToLower(query)
	for _, w := range locationWords {
		if containsWord(lower, w) {
			return IntentLocationGeneral
		}
	}
	return IntentOtherGeneral
}

// containsWord reports whether w appears in s as a whole token, so "do" does
// not match inside "door".
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end == len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '\''
}
