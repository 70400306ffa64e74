package mocks

import (
	"context"
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// UsageStore is a thread-safe in-memory implementation of ports.UsageStore.
type UsageStore struct {
	mu      sync.Mutex
	records []domain.LLMUsageRecord
	done    chan struct{}
}

// NewUsageStore creates an empty usage store. Every stored record signals Done.
func NewUsageStore() *UsageStore {
	return &UsageStore{done: make(chan struct{}, 64)}
}

// IncrementLLMUsage appends a record.
func (s *UsageStore) IncrementLLMUsage(_ context.Context, record domain.LLMUsageRecord) error {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	select {
	case s.done <- struct{}{}:
	default:
	}

	return nil
}

// Done receives once per stored record.
func (s *UsageStore) Done() <-chan struct{} {
	return s.done
}

// Records returns a copy of the stored records.
func (s *UsageStore) Records() []domain.LLMUsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.LLMUsageRecord(nil), s.records...)
}

// PlaygroundRepository is a thread-safe in-memory implementation of ports.PlaygroundRepository.
type PlaygroundRepository struct {
	mu      sync.Mutex
	results []domain.PlaygroundResult
}

// NewPlaygroundRepository creates an empty repository.
func NewPlaygroundRepository() *PlaygroundRepository {
	return &PlaygroundRepository{}
}

// ReplacePlaygroundResult drops the user's previous results in the project and stores result.
func (r *PlaygroundRepository) ReplacePlaygroundResult(_ context.Context, result domain.PlaygroundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.results[:0]

	for _, existing := range r.results {
		if existing.ProjectID == result.ProjectID && existing.UserID == result.UserID {
			continue
		}

		kept = append(kept, existing)
	}

	r.results = append(kept, result)

	return nil
}

// ListPlaygroundResults returns a user's results in a project.
func (r *PlaygroundRepository) ListPlaygroundResults(_ context.Context, projectID, userID int64) ([]domain.PlaygroundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.PlaygroundResult

	for _, res := range r.results {
		if res.ProjectID == projectID && res.UserID == userID {
			out = append(out, res)
		}
	}

	return out, nil
}
