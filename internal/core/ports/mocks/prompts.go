package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// PromptRepository is a thread-safe in-memory implementation of ports.PromptRepository.
type PromptRepository struct {
	mu      sync.RWMutex
	prompts map[int64]domain.Prompt
	nextID  int64
}

// NewPromptRepository creates a new mock prompt repository.
func NewPromptRepository() *PromptRepository {
	return &PromptRepository{prompts: make(map[int64]domain.Prompt)}
}

// ListPrompts filters by project and case-insensitive name search.
func (r *PromptRepository) ListPrompts(_ context.Context, projectID int64, search string, limit, offset int) ([]domain.Prompt, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []domain.Prompt

	for _, p := range r.prompts {
		if p.ProjectID != projectID {
			continue
		}

		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}

		all = append(all, p)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}

	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return all[offset:end], total, nil
}

// FindPrompt returns a prompt of a project.
func (r *PromptRepository) FindPrompt(_ context.Context, projectID, promptID int64) (*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[promptID]
	if !ok || p.ProjectID != projectID {
		return nil, nil
	}

	return &p, nil
}

// CreatePrompt stores a new prompt.
func (r *PromptRepository) CreatePrompt(_ context.Context, p domain.Prompt) (domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.prompts[p.ID] = p

	return p, nil
}

// UpdatePrompt replaces a stored prompt.
func (r *PromptRepository) UpdatePrompt(_ context.Context, p domain.Prompt) (domain.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prompts[p.ID] = p

	return p, nil
}

// DeletePrompt removes a prompt.
func (r *PromptRepository) DeletePrompt(_ context.Context, projectID, promptID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.prompts[promptID]; ok && p.ProjectID == projectID {
		delete(r.prompts, promptID)
	}

	return nil
}
