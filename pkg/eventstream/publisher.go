package eventstream

import "context"

// Publisher publishes pipeline events to an event stream backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnPersistedEvent) error
	PublishCorpusIndexed(ctx context.Context, event *CorpusIndexedEvent) error
	Close() error
}
