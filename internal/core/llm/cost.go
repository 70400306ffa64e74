package llm

import (
	"math"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// Price converts reported usage into credits using per-million token prices.
// Cached input tokens are free; missing counts or prices count as zero.
func Price(usage *domain.Usage, cfg domain.ProviderConfig) int64 {
	if usage == nil {
		return 0
	}

	input := float64(domain.ValueOrZero(usage.InputTokens) - domain.ValueOrZero(usage.CachedTokens))
	output := float64(domain.ValueOrZero(usage.OutputTokens))

	cost := (input*priceOrZero(cfg.PricePerMillionInput) + output*priceOrZero(cfg.PricePerMillionOutput)) / tokensPerMillion

	return int64(math.Round(cost * creditsPerCurrency))
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}

	return *p
}
