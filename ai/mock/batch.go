package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/mailtag/ai"
)

// MockBatchService is a test double for ai.BatchTagService.
// It allows custom behavior injection via function fields and records every
// submitted job so tests can assert on chunking and item membership.
type MockBatchService struct {
	// SubmitBatchFunc is called by SubmitBatch if set.
	SubmitBatchFunc func(ctx context.Context, items []ai.BatchItem) (string, error)

	// BatchStatusFunc is called by BatchStatus if set.
	BatchStatusFunc func(ctx context.Context, handle string) (ai.BatchStatus, error)

	// BatchResultsFunc is called by BatchResults if set.
	BatchResultsFunc func(ctx context.Context, handle string, fn func(ai.BatchResultItem) error) error

	// StatusSequence, when non-empty, is consumed one entry per BatchStatus
	// call per handle; calls beyond the sequence report Ended.
	StatusSequence []ai.BatchStatus

	// ResultPayload generates the payload returned for an item when default
	// results are used. If nil, a fixed JSON object is returned.
	ResultPayload func(item ai.BatchItem) string

	mu           sync.Mutex
	batches      map[string][]ai.BatchItem
	handles      []string
	statusCalls  map[string]int
	submitCount  int
	statusCount  int
	resultsCount int
}

// NewMockBatchService creates a mock batch service whose jobs complete
// immediately and succeed for every item.
// Note: Returns concrete type to allow test assertions.
func NewMockBatchService() *MockBatchService {
	return &MockBatchService{
		batches:     make(map[string][]ai.BatchItem),
		statusCalls: make(map[string]int),
	}
}

// SubmitBatch records the items and returns a generated handle.
func (m *MockBatchService) SubmitBatch(ctx context.Context, items []ai.BatchItem) (string, error) {
	m.mu.Lock()
	m.submitCount++
	m.mu.Unlock()

	if m.SubmitBatchFunc != nil {
		return m.SubmitBatchFunc(ctx, items)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	handle := fmt.Sprintf("batch_%03d", len(m.handles)+1)
	m.batches[handle] = append([]ai.BatchItem(nil), items...)
	m.handles = append(m.handles, handle)
	return handle, nil
}

// BatchStatus walks StatusSequence for the handle, then reports Ended.
func (m *MockBatchService) BatchStatus(ctx context.Context, handle string) (ai.BatchStatus, error) {
	m.mu.Lock()
	m.statusCount++
	call := m.statusCalls[handle]
	m.statusCalls[handle] = call + 1
	m.mu.Unlock()

	if m.BatchStatusFunc != nil {
		return m.BatchStatusFunc(ctx, handle)
	}

	if call < len(m.StatusSequence) {
		return m.StatusSequence[call], nil
	}
	return ai.BatchStatusEnded, nil
}

// BatchResults streams one succeeded result per recorded item.
func (m *MockBatchService) BatchResults(ctx context.Context, handle string, fn func(ai.BatchResultItem) error) error {
	m.mu.Lock()
	m.resultsCount++
	items := m.batches[handle]
	m.mu.Unlock()

	if m.BatchResultsFunc != nil {
		return m.BatchResultsFunc(ctx, handle, fn)
	}

	for _, item := range items {
		payload := `{"subject":"mock subject","topics":["first","second"]}`
		if m.ResultPayload != nil {
			payload = m.ResultPayload(item)
		}
		if err := fn(ai.BatchResultItem{ID: item.ID, Payload: payload}); err != nil {
			return err
		}
	}
	return nil
}

// Handles returns the handles of all submitted jobs in submission order.
func (m *MockBatchService) Handles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.handles...)
}

// Batch returns the recorded items for a handle.
func (m *MockBatchService) Batch(handle string) []ai.BatchItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.BatchItem(nil), m.batches[handle]...)
}

// SubmitCount returns the number of SubmitBatch calls.
func (m *MockBatchService) SubmitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCount
}

// StatusCount returns the number of BatchStatus calls.
func (m *MockBatchService) StatusCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCount
}

// StatusCallsFor returns the number of BatchStatus calls for one handle.
func (m *MockBatchService) StatusCallsFor(handle string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls[handle]
}

// ResultsCount returns the number of BatchResults calls.
func (m *MockBatchService) ResultsCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsCount
}
