package testutils

import (
	"context"
	"fmt"

	"github.com/petalhealth/petal/pkg/llm"
)

// MockChatClient is a test chat client returning canned completions.
type MockChatClient struct {
	// Reply is returned for every completion unless Replies has entries.
	Reply string

	// Replies, when non-empty, are returned in order; the last entry
	// repeats once exhausted.
	Replies []string

	// Requests records every message list passed to Complete.
	Requests [][]llm.Message

	// Fail causes Complete to return an error.
	Fail bool

	calls int
}

func NewMockChatClient(reply string) *MockChatClient {
	return &MockChatClient{Reply: reply}
}

func (m *MockChatClient) Complete(_ context.Context, messages []llm.Message) (string, error) {
	m.Requests = append(m.Requests, messages)
	if m.Fail {
		return "", fmt.Errorf("mock completion failure")
	}

	if len(m.Replies) > 0 {
		idx := m.calls
		if idx >= len(m.Replies) {
			idx = len(m.Replies) - 1
		}
		m.calls++
		return m.Replies[idx], nil
	}
	return m.Reply, nil
}

func (m *MockChatClient) Close() error {
	return nil
}

// Ensure MockChatClient implements llm.ChatClient
var _ llm.ChatClient = (*MockChatClient)(nil)
