// Package textutil provides text cleanup helpers shared by ingestion and
// generation output handling.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean normalizes model and document text: NFKC normalization plus removal
// of leftover encoding artifacts that show up in scraped medical PDFs.
func Clean(text string) string {
	cleaned := norm.NFKC.String(text)
	cleaned = strings.ReplaceAll(cleaned, "�", "")
	cleaned = strings.ReplaceAll(cleaned, "Â", "")
	return strings.TrimSpace(cleaned)
}

// Snippet returns the first n characters of text, trimmed. Used for citation
// snippets rendered to end users.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.TrimSpace(string(runes))
}
