package testutils

import (
	"context"
	"fmt"

	"github.com/petalhealth/petal/pkg/vector"
)

// MockVectorDriver is a test vector driver that records writes and returns
// configurable search results.
type MockVectorDriver struct {
	Entries []vector.Entry
	Results []vector.ScoredPassage

	// Recreated counts Recreate calls; Ensured counts EnsureCollection calls.
	Recreated int
	Ensured   int

	// FailSearch causes Search to return vector.ErrUnavailable.
	FailSearch bool

	// FailUpsert causes Upsert to return vector.ErrUnavailable.
	FailUpsert bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{}
}

func (m *MockVectorDriver) EnsureCollection(_ context.Context, _ uint64) error {
	m.Ensured++
	return nil
}

func (m *MockVectorDriver) Recreate(_ context.Context, _ uint64) error {
	m.Recreated++
	m.Entries = nil
	return nil
}

func (m *MockVectorDriver) Upsert(_ context.Context, entries []vector.Entry) error {
	if m.FailUpsert {
		return fmt.Errorf("%w: mock upsert failure", vector.ErrUnavailable)
	}
	m.Entries = append(m.Entries, entries...)
	return nil
}

func (m *MockVectorDriver) Search(_ context.Context, _ []float32, limit uint64) ([]vector.ScoredPassage, error) {
	if m.FailSearch {
		return nil, fmt.Errorf("%w: mock search failure", vector.ErrUnavailable)
	}
	if uint64(len(m.Results)) > limit {
		return m.Results[:limit], nil
	}
	return m.Results, nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}

// Ensure MockVectorDriver implements vector.Driver
var _ vector.Driver = (*MockVectorDriver)(nil)
