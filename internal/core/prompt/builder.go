package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

const (
	translationMemoryLimit = 5
	relatedKeysLimit       = 10

	descRelatedKeysJSON       = "Related keys in json format (based on context extraction)"
	descTranslationMemoryJSON = "Similar translations from translation memory in json format"
)

// ProjectData is the project model the prompt engine reads and writes.
type ProjectData interface {
	ports.ProjectReader
	ports.KeyReader
	ports.LanguageReader
	ports.TranslationReader
	ports.TranslationWriter
	ports.MetadataProvider
}

// VariableBuilder assembles the variable tree of a prompt.
type VariableBuilder struct {
	data   ProjectData
	logger *zerolog.Logger
}

// NewVariableBuilder creates a builder.
func NewVariableBuilder(data ProjectData, logger *zerolog.Logger) *VariableBuilder {
	return &VariableBuilder{data: data, logger: logger}
}

type buildScope struct {
	project domain.Project
	key     *domain.Key
	source  domain.Language
	target  *domain.Language
	others  []domain.Language

	sourceTranslation *domain.Translation
	targetTranslation *domain.Translation
}

// Build returns the root of the variable tree. keyID and targetLanguageID are
// optional. Lazy leaves capture ctx and must be evaluated while it is alive.
func (b *VariableBuilder) Build(ctx context.Context, projectID int64, keyID, targetLanguageID *int64) (*Variable, error) {
	scope, err := b.scope(ctx, projectID, keyID, targetLanguageID)
	if err != nil {
		return nil, err
	}

	return Group("",
		b.sourceVariable(scope),
		b.targetVariable(scope),
		b.otherVariable(ctx, scope),
		Group("project",
			NewVariable("name", scope.project.Name),
			NewVariable("description", scope.project.Description),
		),
		b.keyVariable(scope),
		Group("relatedKeys",
			LazyVariable("json", descRelatedKeysJSON, func() (string, error) { return b.relatedKeysJSON(ctx, scope) }),
		),
		Group("translationMemory",
			LazyVariable("json", descTranslationMemoryJSON, func() (string, error) { return b.translationMemoryJSON(ctx, scope) }),
		),
		screenshotsVariable(scope.key),
		FragmentGroup(),
	), nil
}

func (b *VariableBuilder) scope(ctx context.Context, projectID int64, keyID, targetLanguageID *int64) (*buildScope, error) {
	scope := &buildScope{}

	if keyID != nil {
		key, err := b.data.FindKey(ctx, *keyID)
		if err != nil {
			return nil, fmt.Errorf("find key: %w", err)
		}

		if key == nil || key.ProjectID != projectID {
			return nil, coreerrors.NewNotFound(coreerrors.MsgKeyNotFound)
		}

		scope.key = key
	}

	project, err := b.data.FindProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	if project == nil {
		return nil, coreerrors.NewNotFound(coreerrors.MsgProjectNotFound)
	}

	scope.project = *project

	languages, err := b.data.ProjectLanguages(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project languages: %w", err)
	}

	sourceFound := false

	for i := range languages {
		lang := languages[i]

		switch {
		case lang.ID == project.BaseLanguageID:
			scope.source = lang
			sourceFound = true
		case targetLanguageID != nil && lang.ID == *targetLanguageID:
			scope.target = &lang
		default:
			scope.others = append(scope.others, lang)
		}
	}

	if !sourceFound {
		return nil, coreerrors.NewNotFound(coreerrors.MsgLanguageNotFound)
	}

	if targetLanguageID != nil && scope.target == nil {
		if *targetLanguageID != project.BaseLanguageID {
			return nil, coreerrors.NewNotFound(coreerrors.MsgLanguageNotFound)
		}

		source := scope.source
		scope.target = &source
	}

	if scope.key != nil {
		if scope.sourceTranslation, err = b.data.FindTranslation(ctx, scope.key.ID, scope.source.ID); err != nil {
			return nil, fmt.Errorf("source translation: %w", err)
		}

		if scope.target != nil {
			if scope.targetTranslation, err = b.data.FindTranslation(ctx, scope.key.ID, scope.target.ID); err != nil {
				return nil, fmt.Errorf("target translation: %w", err)
			}
		}
	}

	return scope, nil
}

func translationText(t *domain.Translation) string {
	if t == nil {
		return ""
	}

	return t.Text
}

func (b *VariableBuilder) sourceVariable(scope *buildScope) *Variable {
	return Group("source",
		NewVariable("language", scope.source.Name),
		NewVariable("translation", translationText(scope.sourceTranslation)),
		NewVariable("languageNote", scope.source.AINote),
	)
}

func (b *VariableBuilder) targetVariable(scope *buildScope) *Variable {
	var (
		name, note                           *string
		examples, exactForms, exampleICUForm *string
	)

	if scope.target != nil {
		name = &scope.target.Name
		note = &scope.target.AINote

		if scope.key != nil && scope.key.IsPlural && scope.sourceTranslation != nil {
			if samples, ok := pluralExamples(scope.sourceTranslation.Text, scope.source.Tag, scope.target.Tag); ok {
				e, f, i := formatPluralExamples(samples), formatExactForms(samples), formatExampleICU(samples)
				examples, exactForms, exampleICUForm = &e, &f, &i
			} else {
				b.logger.Debug().Int64("key_id", scope.key.ID).Msg("plural key source is not an ICU plural")
			}
		}
	}

	if note == nil {
		empty := ""
		note = &empty
	}

	return Group("target",
		OptionalVariable("language", name),
		NewVariable("translation", translationText(scope.targetTranslation)),
		OptionalVariable("pluralFormExamples", examples),
		OptionalVariable("exactForms", exactForms),
		OptionalVariable("exampleIcuPlural", exampleICUForm),
		OptionalVariable("languageNote", note),
	)
}

func (b *VariableBuilder) otherVariable(ctx context.Context, scope *buildScope) *Variable {
	props := make([]*Variable, 0, len(scope.others))

	for _, lang := range scope.others {
		lang := lang

		props = append(props, Group(lang.Tag,
			NewVariable("language", lang.Name),
			NewVariable("languageNote", lang.AINote),
			LazyVariable("translation", "", func() (string, error) {
				if scope.key == nil {
					return "", nil
				}

				t, err := b.data.FindTranslation(ctx, scope.key.ID, lang.ID)
				if err != nil {
					return "", fmt.Errorf("translation %s: %w", lang.Tag, err)
				}

				return translationText(t), nil
			}),
		))
	}

	return Group("other", props...)
}

func (b *VariableBuilder) keyVariable(scope *buildScope) *Variable {
	if scope.key == nil {
		return Group("key", OptionalVariable("name", nil), NewVariable("description", ""))
	}

	return Group("key",
		NewVariable("name", scope.key.Name),
		NewVariable("description", scope.key.Description),
	)
}

func screenshotsVariable(key *domain.Key) *Variable {
	if key == nil {
		return Group("screenshots",
			OptionalVariable("first", nil),
			OptionalVariable("firstFull", nil),
			OptionalVariable("all", nil),
			OptionalVariable("allFull", nil),
		)
	}

	count := len(key.Screenshots)

	return Group("screenshots",
		NewVariable("first", screenshotPlaceholders(min(count, 1), ScreenshotSmall)),
		NewVariable("firstFull", screenshotPlaceholders(min(count, 1), ScreenshotFull)),
		NewVariable("all", screenshotPlaceholders(count, ScreenshotSmall)),
		NewVariable("allFull", screenshotPlaceholders(count, ScreenshotFull)),
	)
}

func (b *VariableBuilder) relatedKeysJSON(ctx context.Context, scope *buildScope) (string, error) {
	if scope.key == nil || scope.target == nil {
		return "", nil
	}

	items, err := b.data.RelatedKeys(ctx, *scope.key, scope.source.ID, scope.target.ID, relatedKeysLimit)
	if err != nil {
		return "", fmt.Errorf("related keys: %w", err)
	}

	return jsonLines(items)
}

func (b *VariableBuilder) translationMemoryJSON(ctx context.Context, scope *buildScope) (string, error) {
	if scope.key == nil || scope.target == nil {
		return "", nil
	}

	items, err := b.data.TranslationMemory(ctx, *scope.key, scope.source.ID, scope.target.ID, translationMemoryLimit)
	if err != nil {
		return "", fmt.Errorf("translation memory: %w", err)
	}

	return jsonLines(items)
}

// jsonLines encodes one JSON document per item, newline separated.
func jsonLines[T any](items []T) (string, error) {
	lines := make([]string, 0, len(items))

	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return "", fmt.Errorf("marshal: %w", err)
		}

		lines = append(lines, string(line))
	}

	return strings.Join(lines, "\n"), nil
}
