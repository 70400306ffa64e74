package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

// ServiceOptions tunes retry behavior.
type ServiceOptions struct {
	MaxAttempts   int
	SuspendPeriod time.Duration
}

// Service invokes a logical provider: select, dispatch, suspend on 429 and retry.
type Service struct {
	selector    *Selector
	adapter     Adapter
	suspensions SuspensionStore
	recorder    UsageRecorder
	opts        ServiceOptions
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewService creates the invocation service. suspensions must be the store the selector reads.
func NewService(selector *Selector, adapter Adapter, suspensions SuspensionStore, recorder UsageRecorder, opts ServiceOptions, logger *zerolog.Logger) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	if opts.SuspendPeriod <= 0 {
		opts.SuspendPeriod = DefaultSuspendPeriod
	}

	if recorder == nil {
		recorder = NoopUsageRecorder()
	}

	return &Service{
		selector:    selector,
		adapter:     adapter,
		suspensions: suspensions,
		recorder:    recorder,
		opts:        opts,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the time source used for suspensions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Invoke sends messages to a provider named name and returns the priced result.
//
// A vendor 429 suspends the responding config for the suspend period and retries
// with the next eligible config, at most MaxAttempts calls in total. A
// RateLimitedError from selection is returned immediately. When every attempt
// was rate limited the returned error is a RateLimitedError carrying the
// earliest suspension written by this call and still matches ErrTooManyRequests.
func (s *Service) Invoke(ctx context.Context, organizationID int64, name string, messages []domain.Message, priority *domain.Priority) (domain.PromptResult, error) {
	invocationID := uuid.NewString()
	logger := s.logger.With().
		Str(logKeyInvocation, invocationID).
		Str(logKeyProvider, name).
		Int64(logKeyOrganization, organizationID).
		Logger()

	var (
		lastErr error
		retryAt time.Time
	)

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		cfg, err := s.selector.Select(ctx, organizationID, name, priority)
		if err != nil {
			return domain.PromptResult{}, err
		}

		result, err := s.adapter.Translate(ctx, messages, cfg)
		if err == nil {
			return s.complete(invocationID, organizationID, cfg, result), nil
		}

		if !coreerrors.Is(err, coreerrors.ErrTooManyRequests) {
			return domain.PromptResult{}, err
		}

		lastErr = err
		until := s.now().Add(s.opts.SuspendPeriod)

		if retryAt.IsZero() || until.Before(retryAt) {
			retryAt = until
		}

		if suspendErr := s.suspensions.Suspend(ctx, name, cfg.ID, until); suspendErr != nil {
			return domain.PromptResult{}, fmt.Errorf("suspend provider %s: %w", cfg.ID, suspendErr)
		}

		observability.LLMProviderSuspensions.WithLabelValues(name).Inc()
		logger.Info().
			Int(logKeyAttempt, attempt).
			Str(logKeyProviderID, cfg.ID.String()).
			Time(logKeyRetryAt, until).
			Msg("provider rate limited, suspended")
	}

	return domain.PromptResult{}, fmt.Errorf("provider %q rate limited after %d attempts: %w: %w",
		name, s.opts.MaxAttempts, lastErr, &coreerrors.RateLimitedError{RetryAt: retryAt})
}

func (s *Service) complete(invocationID string, organizationID int64, cfg domain.ProviderConfig, result domain.PromptResult) domain.PromptResult {
	if result.Usage != nil {
		price := Price(result.Usage, cfg)
		result.Price = &price
	}

	usage := result.Usage
	if usage == nil {
		usage = &domain.Usage{}
	}

	s.recorder.RecordUsage(domain.LLMUsageRecord{
		InvocationID:   invocationID,
		OrganizationID: organizationID,
		ProviderName:   cfg.Name,
		ProviderType:   cfg.Type,
		Model:          result.Model,
		InputTokens:    domain.ValueOrZero(usage.InputTokens),
		OutputTokens:   domain.ValueOrZero(usage.OutputTokens),
		CachedTokens:   domain.ValueOrZero(usage.CachedTokens),
		Price:          domain.ValueOrZero(result.Price),
	})

	return result
}
