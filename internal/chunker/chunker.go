// Package chunker splits raw property document text into overlapping
// fixed-size segments for embedding.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the default chunk length in characters.
	DefaultSize = 500
	// DefaultOverlap is the default overlap between consecutive chunks.
	DefaultOverlap = 50
)

// Options controls chunking behavior.
type Options struct {
	Size    int
	Overlap int
	// MinLen drops trimmed chunks shorter than this many characters.
	// Zero keeps everything non-blank.
	MinLen int
}

// DefaultOptions returns the standard chunking parameters.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Overlap: DefaultOverlap}
}

// Chunk splits text into overlapping segments of opts.Size characters,
// advancing by Size-Overlap each step. Every character of the input is
// covered by at least one chunk; the final chunk may overlap its predecessor
// by more than Overlap so the tail is never dropped. Blank chunks (after
// trimming) are filtered out and duplicates are removed while preserving
// order.
func Chunk(text string, opts Options) ([]string, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", opts.Size)
	}
	if opts.Overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", opts.Overlap)
	}
	// overlap >= size would never advance the window.
	if opts.Overlap >= opts.Size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than size %d", opts.Overlap, opts.Size)
	}

	// Window over runes, not bytes, so multi-byte characters are never
	// split across a chunk boundary.
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= opts.Size {
		return finalize([]string{text}, opts.MinLen), nil
	}

	step := opts.Size - opts.Overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + opts.Size
		if end >= len(runes) {
			// Take a full-size tail chunk so the end of the document is
			// always fully covered, even if that means extra overlap.
			tail := len(runes) - opts.Size
			if tail < 0 {
				tail = 0
			}
			chunks = append(chunks, string(runes[tail:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return finalize(chunks, opts.MinLen), nil
}

// finalize trims, drops blank or too-short chunks, and deduplicates while
// preserving order.
func finalize(chunks []string, minLen int) []string {
	seen := make(map[string]bool, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		t := strings.TrimSpace(c)
		if t == "" || len(t) < minLen {
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
