package convo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/petalhealth/petal/pkg/llm"
)

// SummaryPrompt is the instruction used to compress a turn into one line.
const SummaryPrompt = "Summarize this text concisely in under 20 words."

// Summarizer produces cached one-line summaries of conversation turns. A turn
// is summarized exactly once, when it is created; the Compactor only ever
// reads the cached result.
type Summarizer struct {
	client llm.ChatClient
	logger *slog.Logger
}

// NewSummarizer creates a summarizer backed by a chat client.
func NewSummarizer(client llm.ChatClient, logger *slog.Logger) *Summarizer {
	return &Summarizer{client: client, logger: logger}
}

// Summarize compresses text into a single short line. A failed completion
// degrades to an empty summary so the turn can still be stored; the Compactor
// skips turns without summaries.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	reply, err := s.client.Complete(ctx, []llm.Message{
		llm.System(SummaryPrompt),
		llm.User(text),
	})
	if err != nil {
		s.logger.Warn("turn summarization failed, storing without summary", "error", err)
		return ""
	}
	return strings.TrimSpace(reply)
}
