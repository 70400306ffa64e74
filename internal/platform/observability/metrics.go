package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_requests_total",
		Help: "The total number of vendor LLM calls by provider type and outcome",
	}, []string{"provider_type", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tolgee_ai_llm_request_duration_seconds",
		Help:    "Duration of vendor LLM calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider_type"})

	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_tokens_total",
		Help: "Tokens reported by vendors",
	}, []string{"provider", "kind"})

	LLMPriceCredits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_price_credits_total",
		Help: "Credits charged for LLM invocations",
	}, []string{"provider"})

	LLMProviderSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_provider_selections_total",
		Help: "Provider selections by logical name and source (custom or server)",
	}, []string{"provider", "source"})

	LLMProviderSuspensions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_provider_suspensions_total",
		Help: "Provider suspensions caused by vendor rate limiting",
	}, []string{"provider"})

	LLMAllSuspended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_llm_all_suspended_total",
		Help: "Selections rejected because every candidate was suspended",
	}, []string{"provider"})

	PromptRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_prompt_renders_total",
		Help: "Prompt template renders by outcome",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tolgee_ai_http_requests_total",
		Help: "REST API requests by route and status code",
	}, []string{"route", "code"})
)
