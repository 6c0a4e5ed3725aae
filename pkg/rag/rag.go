// Package rag orchestrates retrieval, conversation context, and generation
// into a single answer path.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/petalhealth/petal/pkg/convo"
	"github.com/petalhealth/petal/pkg/llm"
	"github.com/petalhealth/petal/pkg/prompt"
	"github.com/petalhealth/petal/pkg/retriever"
	"github.com/petalhealth/petal/pkg/textutil"
)

// Answer is a generated reply with the sources that grounded it.
type Answer struct {
	Reply     string               `json:"reply"`
	Citations []retriever.Citation `json:"sources"`
}

// Engine wires the retriever, compactor, and chat client together.
type Engine struct {
	retriever *retriever.Retriever
	compactor *convo.Compactor
	chat      llm.ChatClient
	logger    *slog.Logger

	// TopK is how many passages are retrieved per query.
	TopK uint64
}

// New creates an engine with the default retrieval depth.
func New(r *retriever.Retriever, c *convo.Compactor, chat llm.ChatClient, logger *slog.Logger) *Engine {
	return &Engine{
		retriever: r,
		compactor: c,
		chat:      chat,
		logger:    logger,
		TopK:      retriever.DefaultTopK,
	}
}

// Answer runs the full pipeline for one query: retrieve passages, build the
// bounded conversation context, compose the prompt, and complete it. A failed
// retrieval or completion aborts the request; no partial answer is returned.
func (e *Engine) Answer(ctx context.Context, userID, query string, mode prompt.Mode) (*Answer, error) {
	scored, err := e.retriever.Retrieve(ctx, query, e.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving passages: %w", err)
	}
	passages := retriever.Passages(scored)

	texts := make([]string, 0, len(passages))
	for _, passage := range passages {
		texts = append(texts, passage.Text)
	}
	composed := prompt.Compose(strings.Join(texts, "\n\n"), query, mode)

	messages, err := e.compactor.Context(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("building conversation context: %w", err)
	}
	messages = append(messages, llm.User(composed))

	e.logger.Debug("completing query",
		"user_id", userID,
		"mode", mode,
		"passages", len(passages),
		"messages", len(messages),
	)

	reply, err := e.chat.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("completing prompt: %w", err)
	}

	return &Answer{
		Reply:     textutil.Clean(reply),
		Citations: retriever.Citations(passages),
	}, nil
}
