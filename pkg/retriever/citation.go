package retriever

import (
	"github.com/petalhealth/petal/pkg/textutil"
	"github.com/petalhealth/petal/pkg/vector"
)

// snippetLength is the number of leading passage characters shown to users.
const snippetLength = 300

// Citation is the source record rendered to the application layer alongside
// a generated answer.
type Citation struct {
	Page    string `json:"page"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// Citations deduplicates passages by (source, page) and converts them to
// citation records. Missing metadata renders as "N/A"/"Untitled"/"Unknown".
func Citations(passages []vector.Passage) []Citation {
	deduped := Deduplicate(passages)

	citations := make([]Citation, 0, len(deduped))
	for _, p := range deduped {
		c := Citation{
			Page:    p.Metadata.Page,
			Title:   p.Metadata.Title,
			Source:  p.Metadata.Source,
			Snippet: textutil.Snippet(p.Text, snippetLength),
		}
		if c.Page == "" {
			c.Page = "N/A"
		}
		if c.Title == "" {
			c.Title = "Untitled"
		}
		if c.Source == "" {
			c.Source = "Unknown"
		}
		citations = append(citations, c)
	}
	return citations
}
