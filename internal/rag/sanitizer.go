package rag

import (
	"regexp"
	"strings"
)

// MinAnswerLen is the minimum length of a sanitized answer before it is
// replaced with a clarifying message.
const MinAnswerLen = 4

// ClarifyMessage is returned when sanitization strips an answer down to
// nothing useful.
const ClarifyMessage = "Could you rephrase that? I want to make sure I give you the right answer."

var (
	// citationPattern matches inline citation markers like [1] or (2).
	citationPattern = regexp.MustCompile(`\[\d+\]|\(\d+\)`)

	// scaffoldLinePattern matches template lines the model sometimes leaks,
	// like "Option 1:" or "Step 2."
	scaffoldLinePattern = regexp.MustCompile(`(?i)^(type|step|option|plan)\s*\d+\s*[:.)]`)

	// selfAnswerPattern matches lines that restate the question and answer it
	// in one breath, like "Is there a pool? Yes."
	selfAnswerPattern = regexp.MustCompile(`\?\s*(Yes|No)\.?\s*$`)
)

// Sanitize cleans a raw model answer for guest delivery: citation markers,
// leaked template scaffolding and question-echo lines are removed, wrapping
// quotes stripped, and a too-short result is replaced with ClarifyMessage.
// Sanitize is idempotent: sanitizing its own output changes nothing.
func Sanitize(answer string) string {
	// Quote stripping can expose a line the filters would have removed, so
	// run the pass to a fixed point. Each pass either shrinks the string or
	// leaves it unchanged, so this terminates.
	s := answer
	for {
		next := sanitizePass(s)
		if next == s {
			break
		}
		s = next
	}

	if len(s) < MinAnswerLen {
		return ClarifyMessage
	}
	return s
}

// sanitizePass applies one round of citation removal, line filtering and
// wrapping-quote stripping.
func sanitizePass(answer string) string {
	s := citationPattern.ReplaceAllString(answer, "")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if scaffoldLinePattern.MatchString(trimmed) {
			continue
		}
		if selfAnswerPattern.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	s = strings.TrimSpace(strings.Join(kept, "\n"))

	// Strip a single pair of wrapping quotes.
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return s
}
