package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

// UsageRecorder receives one record per successful vendor call.
type UsageRecorder interface {
	RecordUsage(record domain.LLMUsageRecord)
}

type usageRecorder struct {
	store  ports.UsageStore
	logger *zerolog.Logger
}

// NewUsageRecorder exports usage as metrics and, when store is not nil,
// adds it to the daily billing counters.
func NewUsageRecorder(store ports.UsageStore, logger *zerolog.Logger) UsageRecorder {
	return &usageRecorder{store: store, logger: logger}
}

func (r *usageRecorder) RecordUsage(record domain.LLMUsageRecord) {
	tokens := []struct {
		kind  string
		count int64
	}{
		{"input", record.InputTokens},
		{"output", record.OutputTokens},
		{"cached", record.CachedTokens},
	}

	for _, t := range tokens {
		if t.count > 0 {
			observability.LLMTokens.WithLabelValues(record.ProviderName, t.kind).Add(float64(t.count))
		}
	}

	if record.Price > 0 {
		observability.LLMPriceCredits.WithLabelValues(record.ProviderName).Add(float64(record.Price))
	}

	if r.store != nil {
		go r.persist(record)
	}
}

// persist runs detached from the request; a failed write only loses billing data.
func (r *usageRecorder) persist(record domain.LLMUsageRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), usageStorageTimeout)
	defer cancel()

	if err := r.store.IncrementLLMUsage(ctx, record); err != nil {
		r.logger.Warn().Err(err).
			Str(logKeyInvocation, record.InvocationID).
			Int64(logKeyOrganization, record.OrganizationID).
			Msg("failed to store llm usage")
	}
}

type noopUsageRecorder struct{}

// NoopUsageRecorder discards usage.
func NoopUsageRecorder() UsageRecorder {
	return noopUsageRecorder{}
}

func (noopUsageRecorder) RecordUsage(domain.LLMUsageRecord) {}
