// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
//
// Find* methods return a nil entity and a nil error when nothing matches.
package ports

import (
	"context"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// ProviderRepository persists organization-owned provider configs.
type ProviderRepository interface {
	ListProviders(ctx context.Context, organizationID int64) ([]domain.ProviderConfig, error)
	FindProvider(ctx context.Context, id int64) (*domain.ProviderConfig, error)
	CreateProvider(ctx context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error)
	UpdateProvider(ctx context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error)
	DeleteProvider(ctx context.Context, id int64) error
}

// PromptRepository persists project prompts.
type PromptRepository interface {
	ListPrompts(ctx context.Context, projectID int64, search string, limit, offset int) ([]domain.Prompt, int, error)
	FindPrompt(ctx context.Context, projectID, promptID int64) (*domain.Prompt, error)
	CreatePrompt(ctx context.Context, p domain.Prompt) (domain.Prompt, error)
	UpdatePrompt(ctx context.Context, p domain.Prompt) (domain.Prompt, error)
	DeletePrompt(ctx context.Context, projectID, promptID int64) error
}

// ProjectReader reads projects.
type ProjectReader interface {
	FindProject(ctx context.Context, projectID int64) (*domain.Project, error)
}

// KeyReader reads keys together with their screenshots.
type KeyReader interface {
	FindKey(ctx context.Context, keyID int64) (*domain.Key, error)
}

// LanguageReader reads project languages.
type LanguageReader interface {
	ProjectLanguages(ctx context.Context, projectID int64) ([]domain.Language, error)
}

// TranslationReader reads translations.
type TranslationReader interface {
	FindTranslation(ctx context.Context, keyID, languageID int64) (*domain.Translation, error)
}

// TranslationWriter stores machine translations.
type TranslationWriter interface {
	SetTranslation(ctx context.Context, keyID, languageID int64, text string) error
}

// MetadataProvider supplies translation context gathered from the rest of the project.
type MetadataProvider interface {
	TranslationMemory(ctx context.Context, key domain.Key, sourceLanguageID, targetLanguageID int64, limit int) ([]domain.TranslationMemoryItem, error)
	RelatedKeys(ctx context.Context, key domain.Key, sourceLanguageID, targetLanguageID int64, limit int) ([]domain.RelatedKey, error)
}

// ScreenshotStore reads screenshot image files.
type ScreenshotStore interface {
	ScreenshotPath(filename string) string
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// ImageHighlighter marks key areas on a screenshot image.
type ImageHighlighter interface {
	Highlight(image []byte, screenshot domain.Screenshot, keyIDs []int64) ([]byte, error)
}

// PlaygroundRepository keeps the latest playground results per user.
type PlaygroundRepository interface {
	ReplacePlaygroundResult(ctx context.Context, result domain.PlaygroundResult) error
	ListPlaygroundResults(ctx context.Context, projectID, userID int64) ([]domain.PlaygroundResult, error)
}

// UsageStore aggregates LLM usage for billing.
type UsageStore interface {
	IncrementLLMUsage(ctx context.Context, record domain.LLMUsageRecord) error
}
