package mock

import (
	"context"
	"sync"
)

// MockTagger is a test double for ai.Tagger.
// It allows custom behavior injection via a function field.
type MockTagger struct {
	// TagImageFunc is called by TagImage if set.
	// If nil, a fixed JSON payload is returned.
	TagImageFunc func(ctx context.Context, imageData []byte, prompt string) (string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTagger creates a mock tagger with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTagger() *MockTagger {
	return &MockTagger{}
}

// TagImage returns a fixed tag payload unless TagImageFunc is set.
func (m *MockTagger) TagImage(ctx context.Context, imageData []byte, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TagImageFunc != nil {
		return m.TagImageFunc(ctx, imageData, prompt)
	}
	return `{"subject":"mock subject","sender":"mock sender"}`, nil
}

// CallCount returns the number of TagImage calls.
func (m *MockTagger) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
