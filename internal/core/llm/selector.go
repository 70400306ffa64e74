package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

// Selector chooses one provider config for a logical name.
type Selector struct {
	providers   ports.ProviderRepository
	server      []domain.ProviderConfig
	suspensions SuspensionStore
	rotation    *RotationState
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewSelector creates a selector. server holds the statically configured providers.
func NewSelector(providers ports.ProviderRepository, server []domain.ProviderConfig, suspensions SuspensionStore, rotation *RotationState, logger *zerolog.Logger) *Selector {
	return &Selector{
		providers:   providers,
		server:      server,
		suspensions: suspensions,
		rotation:    rotation,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the time source.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// ServerProviders returns the statically configured providers.
func (s *Selector) ServerProviders() []domain.ProviderConfig {
	return append([]domain.ProviderConfig(nil), s.server...)
}

// Select returns the next eligible provider config named name.
//
// Custom configs of the organization shadow server configs of the same name.
// When priority is set and some candidates declare it, only those are kept.
// Suspended candidates are skipped; if all are suspended a RateLimitedError
// carries the earliest moment one of them is usable again.
func (s *Selector) Select(ctx context.Context, organizationID int64, name string, priority *domain.Priority) (domain.ProviderConfig, error) {
	candidates, source, err := s.candidates(ctx, organizationID, name)
	if err != nil {
		return domain.ProviderConfig{}, err
	}

	candidates = narrowByPriority(candidates, priority)

	if len(candidates) == 0 {
		return domain.ProviderConfig{}, coreerrors.NewBadRequest(coreerrors.MsgLLMProviderNotFound, name)
	}

	entry := s.rotation.Lock(name)
	defer entry.Unlock()

	suspended, err := s.suspensions.Suspensions(ctx, name)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("load suspensions for %q: %w", name, err)
	}

	eligible, retryAt := s.filterSuspended(candidates, suspended)
	if len(eligible) == 0 {
		observability.LLMAllSuspended.WithLabelValues(name).Inc()
		s.logger.Warn().
			Str(logKeyProvider, name).
			Time(logKeyRetryAt, retryAt).
			Msg("all provider candidates are suspended")

		return domain.ProviderConfig{}, &coreerrors.RateLimitedError{RetryAt: retryAt}
	}

	picked := entry.Next(eligible)

	observability.LLMProviderSelections.WithLabelValues(name, source).Inc()

	return picked, nil
}

func (s *Selector) candidates(ctx context.Context, organizationID int64, name string) ([]domain.ProviderConfig, string, error) {
	custom, err := s.providers.ListProviders(ctx, organizationID)
	if err != nil {
		return nil, "", fmt.Errorf("list providers: %w", err)
	}

	if named := filterByName(custom, name); len(named) > 0 {
		return named, sourceCustom, nil
	}

	return filterByName(s.server, name), sourceServer, nil
}

// filterSuspended keeps candidates whose suspension has expired and reports the
// earliest unsuspend instant among the dropped ones.
func (s *Selector) filterSuspended(candidates []domain.ProviderConfig, suspended map[domain.ProviderID]time.Time) ([]domain.ProviderConfig, time.Time) {
	now := s.now()

	var (
		eligible []domain.ProviderConfig
		retryAt  time.Time
	)

	for _, c := range candidates {
		until, ok := suspended[c.ID]
		if ok && until.After(now) {
			if retryAt.IsZero() || until.Before(retryAt) {
				retryAt = until
			}

			continue
		}

		eligible = append(eligible, c)
	}

	return eligible, retryAt
}

func filterByName(configs []domain.ProviderConfig, name string) []domain.ProviderConfig {
	var out []domain.ProviderConfig

	for _, c := range configs {
		if c.Name == name {
			out = append(out, c)
		}
	}

	return out
}

func narrowByPriority(candidates []domain.ProviderConfig, priority *domain.Priority) []domain.ProviderConfig {
	if priority == nil {
		return candidates
	}

	var matching []domain.ProviderConfig

	for _, c := range candidates {
		if c.HasPriority(*priority) {
			matching = append(matching, c)
		}
	}

	if len(matching) == 0 {
		return candidates
	}

	return matching
}
