package convo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/petalhealth/petal/pkg/history"
	"github.com/petalhealth/petal/pkg/llm"
)

const (
	// DefaultMaxHistory is how many recent turns are loaded per request.
	DefaultMaxHistory = 50

	// DefaultRecentWindow is how many recent Interactions stay verbatim.
	DefaultRecentWindow = 10

	// DefaultSystemPrompt is the minimal instruction used when the query
	// carries no recall trigger.
	DefaultSystemPrompt = "You are a helpful AI assistant focused on PCOS & women's health."

	summaryHeader = "Summary of earlier conversation:\n"
)

// Compactor builds a bounded conversation context for generation requests.
type Compactor struct {
	store  history.Driver
	recall *RecallPolicy
	logger *slog.Logger

	// MaxHistory bounds the turns loaded from the store.
	MaxHistory int

	// RecentWindow bounds the Interactions kept verbatim.
	RecentWindow int

	// SystemPrompt is emitted alone when recall is not triggered.
	SystemPrompt string
}

// NewCompactor creates a compactor with default bounds.
func NewCompactor(store history.Driver, recall *RecallPolicy, logger *slog.Logger) *Compactor {
	return &Compactor{
		store:        store,
		recall:       recall,
		logger:       logger,
		MaxHistory:   DefaultMaxHistory,
		RecentWindow: DefaultRecentWindow,
		SystemPrompt: DefaultSystemPrompt,
	}
}

// Context assembles the message prefix for a user's next generation request.
//
// Queries without a recall trigger get the system prompt alone, skipping the
// history load entirely. Triggered queries load up to MaxHistory turns, keep
// the last RecentWindow Interactions verbatim, and compress everything older
// into a single leading system entry built from the turns' cached summaries.
func (c *Compactor) Context(ctx context.Context, userID, query string) ([]llm.Message, error) {
	if !c.recall.Triggered(query) {
		return []llm.Message{llm.System(c.SystemPrompt)}, nil
	}

	turns, err := c.store.Recent(ctx, userID, c.MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", userID, err)
	}

	interactions := Pair(turns)
	c.logger.Debug("compacting conversation",
		"user_id", userID,
		"turns", len(turns),
		"interactions", len(interactions),
	)

	if len(interactions) <= c.RecentWindow {
		return messagesFor(interactions), nil
	}

	early := interactions[:len(interactions)-c.RecentWindow]
	recent := interactions[len(interactions)-c.RecentWindow:]

	messages := make([]llm.Message, 0, 2*c.RecentWindow+1)
	if block := summaryBlock(early); block != "" {
		messages = append(messages, llm.System(block))
	}
	return append(messages, messagesFor(recent)...), nil
}

// messagesFor emits each Interaction's turns verbatim, user then assistant.
func messagesFor(interactions []Interaction) []llm.Message {
	messages := make([]llm.Message, 0, 2*len(interactions))
	for _, interaction := range interactions {
		if interaction.User != nil {
			messages = append(messages, llm.User(interaction.User.Content))
		}
		if interaction.Assistant != nil {
			messages = append(messages, llm.Assistant(interaction.Assistant.Content))
		}
	}
	return messages
}

// summaryBlock joins the cached summaries of early turns into one entry.
// Turns without a summary are skipped.
func summaryBlock(interactions []Interaction) string {
	var summaries []string
	add := func(turn *history.Turn) {
		if turn != nil && turn.Summary != "" {
			summaries = append(summaries, turn.Summary)
		}
	}
	for _, interaction := range interactions {
		add(interaction.User)
		add(interaction.Assistant)
	}
	if len(summaries) == 0 {
		return ""
	}
	return summaryHeader + strings.Join(summaries, "\n")
}
