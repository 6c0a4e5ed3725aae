package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
// Unknown texts hash deterministically into a small vector so embedding the
// same text twice always yields identical output.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dim is the reported vector dimension. Defaults to 3.
	Dim uint64

	// FailOn causes Embed to fail when any input text matches.
	FailOn string

	// Calls counts Embed invocations.
	Calls int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dim:        3,
	}
}

func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.Calls++

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}
		if emb, ok := m.Embeddings[text]; ok {
			out[i] = emb
			continue
		}
		out[i] = m.deterministic(text)
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() uint64 {
	return m.Dim
}

func (m *MockEmbedder) Close() error {
	return nil
}

// deterministic derives a stable vector from the text bytes.
func (m *MockEmbedder) deterministic(text string) []float32 {
	vec := make([]float32, m.Dim)
	for i, b := range []byte(text) {
		vec[i%int(m.Dim)] += float32(b) / 255
	}
	return vec
}
