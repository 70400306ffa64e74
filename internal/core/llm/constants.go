package llm

import "time"

// HTTP header values
const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

// Error format strings for API clients
const (
	errFmtMarshalRequest = "marshal request: %w"
	errFmtCreateRequest  = "create request: %w"
	errFmtReadResponse   = "read response: %w"
	errFmtDecodeResponse = "decode response: %w"
	errFmtAPIStatusOnly  = "%w: status %d"
	errFmtVendorRequest  = "%s request: %w"
)

// Vendor request defaults.
const (
	openAIAPIVersion          = "2024-12-01-preview"
	openAIMaxCompletionTokens = 800
	claudeMaxTokens           = 1000
	claudeBlockText           = "text"
	jsonSchemaName            = "simple_response"
	geminiJSONReminder        = "Return only valid json!"
	ollamaFormatJSON          = "json"
	formatJSONObject          = "json_object"
	formatJSONSchema          = "json_schema"
	roleUser                  = "user"
	defaultImageMIME          = "image/png"
	jsonMarker                = "json"
)

// Orchestration defaults.
const (
	DefaultMaxAttempts   = 4
	DefaultSuspendPeriod = time.Minute
	DefaultHTTPTimeout   = 60 * time.Second
	rateLimiterBurst     = 5
	usageStorageTimeout  = 5 * time.Second
	errorBodyLogLimit    = 500
)

// Price conversion: vendor prices are per million tokens, credits are hundredths.
const (
	tokensPerMillion   = 1000000.0
	creditsPerCurrency = 100.0
)

// Log field keys
const (
	logKeyProvider     = "provider"
	logKeyProviderID   = "provider_id"
	logKeyProviderType = "provider_type"
	logKeyAttempt      = "attempt"
	logKeyInvocation   = "invocation_id"
	logKeyOrganization = "organization_id"
	logKeyRetryAt      = "retry_at"
	logKeyStatus       = "status"
)

// Request status for metrics.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

// Selection sources for metrics.
const (
	sourceCustom = "custom"
	sourceServer = "server"
)
