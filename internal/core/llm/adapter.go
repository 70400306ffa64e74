// Package llm routes prompts to organization or server configured LLM providers.
//
// The package contains:
//   - Adapters for the supported vendor APIs (OpenAI/Azure, Claude, Gemini, Ollama)
//   - Dispatcher: picks the adapter for a provider type and applies outbound rate limits
//   - Selector: priority narrowing, suspension filtering and round-robin rotation
//   - Service: bounded retry on vendor rate limiting plus price and usage accounting
//   - ProviderService: organization provider administration
package llm

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

// Adapter sends ordered messages to one vendor and normalizes the reply.
type Adapter interface {
	Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error)
}

// DispatcherOptions configures outbound calls.
type DispatcherOptions struct {
	// Timeout bounds a single vendor call. Zero means DefaultHTTPTimeout.
	Timeout time.Duration
	// RateLimitRPS caps calls per provider config. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Dispatcher routes a call to the adapter matching the provider type.
type Dispatcher struct {
	openAI Adapter
	claude Adapter
	gemini Adapter
	ollama Adapter

	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[domain.ProviderID]*rate.Limiter

	logger *zerolog.Logger
}

var _ Adapter = (*Dispatcher)(nil)

// NewDispatcher builds a dispatcher with all vendor adapters sharing one HTTP client.
func NewDispatcher(opts DispatcherOptions, logger *zerolog.Logger) *Dispatcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	httpClient := &http.Client{Timeout: timeout}

	burst := opts.RateLimitBurst
	if burst <= 0 {
		burst = rateLimiterBurst
	}

	return &Dispatcher{
		openAI:   newOpenAIAdapter(httpClient),
		claude:   newClaudeAdapter(httpClient),
		gemini:   newGeminiAdapter(httpClient),
		ollama:   newOllamaAdapter(httpClient),
		rps:      rate.Limit(opts.RateLimitRPS),
		burst:    burst,
		limiters: make(map[domain.ProviderID]*rate.Limiter),
		logger:   logger,
	}
}

// Translate implements Adapter.
func (d *Dispatcher) Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error) {
	adapter, err := d.adapterFor(cfg.Type)
	if err != nil {
		return domain.PromptResult{}, err
	}

	if err := d.wait(ctx, cfg.ID); err != nil {
		return domain.PromptResult{}, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	result, err := adapter.Translate(ctx, messages, cfg)
	observability.LLMRequestDuration.WithLabelValues(string(cfg.Type)).Observe(time.Since(start).Seconds())

	status := StatusSuccess

	switch {
	case coreerrors.Is(err, coreerrors.ErrTooManyRequests):
		status = StatusRateLimited
	case err != nil:
		status = StatusError
	}

	observability.LLMRequests.WithLabelValues(string(cfg.Type), status).Inc()

	if err != nil {
		d.logger.Debug().Err(err).
			Str(logKeyProvider, cfg.Name).
			Str(logKeyProviderID, cfg.ID.String()).
			Str(logKeyProviderType, string(cfg.Type)).
			Str(logKeyStatus, status).
			Msg("vendor call failed")

		return domain.PromptResult{}, err
	}

	result.ProviderID = cfg.ID
	result.ProviderType = cfg.Type

	if result.Model == "" {
		result.Model = cfg.Model
	}

	return result, nil
}

func (d *Dispatcher) adapterFor(t domain.ProviderType) (Adapter, error) {
	switch t {
	case domain.ProviderOpenAI:
		return d.openAI, nil
	case domain.ProviderClaude:
		return d.claude, nil
	case domain.ProviderGemini:
		return d.gemini, nil
	case domain.ProviderOllama:
		return d.ollama, nil
	default:
		return nil, fmt.Errorf("%w: provider type %q", coreerrors.ErrInvalidInput, t)
	}
}

func (d *Dispatcher) wait(ctx context.Context, id domain.ProviderID) error {
	if d.rps <= 0 {
		return nil
	}

	d.mu.Lock()

	limiter, ok := d.limiters[id]
	if !ok {
		limiter = rate.NewLimiter(d.rps, d.burst)
		d.limiters[id] = limiter
	}

	d.mu.Unlock()

	return limiter.Wait(ctx)
}
