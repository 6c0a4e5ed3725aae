package llm

import "context"

// ChatClient produces a single text completion for an ordered message list.
// Retry policy belongs to implementations, not callers; a failed call is
// surfaced as an error, never as partial output.
type ChatClient interface {
	// Complete sends the messages and returns the generated text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Close releases any resources held by the client.
	Close() error
}

// ErrorResponse is the JSON error body returned by API handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}
