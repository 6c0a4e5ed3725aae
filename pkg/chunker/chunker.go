// Package chunker splits raw document text into overlapping, bounded-length
// passages for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultTargetSize is the soft character target for a base chunk.
	DefaultTargetSize = 500

	// DefaultOverlap is the nominal overlap parameter. Overlap is realized
	// structurally (see Split), so this value is carried for API
	// compatibility rather than used as a character count.
	DefaultOverlap = 100
)

// sentenceSplitter matches sentence-terminating runs of punctuation.
var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

// Chunker splits text into sentence-aligned chunks.
//
// TargetSize is a soft target: a chunk is closed when appending the next
// sentence would reach it, and a single sentence longer than TargetSize is
// emitted whole, never truncated mid-sentence.
//
// Overlap between adjacent chunks is realized structurally: each output chunk
// after the first is the concatenation of the previous base chunk and the
// current one, so semantic context is never severed at a boundary. The
// Overlap field does not control a fixed character count.
type Chunker struct {
	TargetSize int
	Overlap    int
}

// New creates a Chunker, applying defaults for non-positive parameters.
func New(targetSize, overlap int) *Chunker {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Chunker{TargetSize: targetSize, Overlap: overlap}
}

// Split consumes the whole text eagerly and returns the finite chunk
// sequence. Empty or whitespace-only text yields nil.
func (c *Chunker) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	// Greedily accumulate sentences into base chunks.
	var base []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) >= c.TargetSize {
			base = append(base, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		base = append(base, current.String())
	}

	// Prepend each base chunk's predecessor to form the output sequence.
	final := make([]string, len(base))
	for i := range base {
		if i == 0 {
			final[i] = base[i]
			continue
		}
		final[i] = base[i-1] + " " + base[i]
	}

	return final
}

// splitSentences breaks text into trimmed sentence units, keeping terminal
// punctuation attached. A trailing fragment without terminal punctuation is
// kept as its own unit.
func splitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceSplitter.FindStringIndex(rest)
		if loc == nil {
			break
		}
		if s := strings.TrimSpace(rest[:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		rest = rest[loc[1]:]
	}
	if s := strings.TrimSpace(rest); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
