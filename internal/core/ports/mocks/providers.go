package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// ProviderRepository is a thread-safe in-memory implementation of ports.ProviderRepository.
type ProviderRepository struct {
	mu        sync.RWMutex
	providers map[int64]domain.ProviderConfig
	nextID    int64

	// ListProvidersFn allows overriding ListProviders behavior.
	ListProvidersFn func(ctx context.Context, organizationID int64) ([]domain.ProviderConfig, error)
}

// NewProviderRepository creates a new mock provider repository.
func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{
		providers: make(map[int64]domain.ProviderConfig),
	}
}

// Add stores cfg with the next id and returns it.
func (r *ProviderRepository) Add(cfg domain.ProviderConfig) domain.ProviderConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cfg.ID = domain.StoredProviderID(r.nextID)
	r.providers[r.nextID] = cfg

	return cfg
}

// ListProviders returns the providers of an organization ordered by id.
func (r *ProviderRepository) ListProviders(ctx context.Context, organizationID int64) ([]domain.ProviderConfig, error) {
	if r.ListProvidersFn != nil {
		return r.ListProvidersFn(ctx, organizationID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ProviderConfig

	for _, p := range r.providers {
		if p.OrganizationID == organizationID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID.Value() < out[j].ID.Value() })

	return out, nil
}

// FindProvider returns a provider by id.
func (r *ProviderRepository) FindProvider(_ context.Context, id int64) (*domain.ProviderConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

// CreateProvider stores a new provider.
func (r *ProviderRepository) CreateProvider(_ context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	return r.Add(cfg), nil
}

// UpdateProvider replaces a stored provider.
func (r *ProviderRepository) UpdateProvider(_ context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[cfg.ID.Value()] = cfg

	return cfg, nil
}

// DeleteProvider removes a provider.
func (r *ProviderRepository) DeleteProvider(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, id)

	return nil
}
