// Package prompt builds, renders and runs translation prompts.
//
// A prompt goes through four steps: the VariableBuilder assembles a lazily
// evaluated variable tree from project data, the Renderer renders fragments
// and then the prompt template, the Segmenter splits the text into text and
// screenshot messages, and an Invoker sends the messages to a provider.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

const (
	fieldOutput             = "output"
	fieldContextDescription = "contextDescription"

	logKeyProject  = "project_id"
	logKeyKey      = "key_id"
	logKeyLanguage = "language_id"
	logKeyUser     = "user_id"
)

// Invoker runs messages against a logical provider.
type Invoker interface {
	Invoke(ctx context.Context, organizationID int64, name string, messages []domain.Message, priority *domain.Priority) (domain.PromptResult, error)
}

var _ Invoker = (*llm.Service)(nil)

// Request is a stored prompt's editable fields.
type Request struct {
	Name         string
	Template     string
	ProviderName string
}

// RunRequest renders template for a key and target language and runs it on provider.
type RunRequest struct {
	Template         string
	KeyID            int64
	TargetLanguageID int64
	Provider         string
}

// RunResponse is the outcome of a playground run.
type RunResponse struct {
	Prompt     string
	Result     string
	ParsedJSON map[string]any
	Price      *int64
	Usage      *domain.Usage
}

// ServiceDeps holds the collaborators of Service.
type ServiceDeps struct {
	Prompts    ports.PromptRepository
	Playground ports.PlaygroundRepository
	Data       ProjectData
	Builder    *VariableBuilder
	Renderer   *Renderer
	Segmenter  *Segmenter
	Invoker    Invoker
}

// Service manages prompts and runs them.
type Service struct {
	prompts    ports.PromptRepository
	playground ports.PlaygroundRepository
	data       ProjectData
	builder    *VariableBuilder
	renderer   *Renderer
	segmenter  *Segmenter
	invoker    Invoker
	logger     *zerolog.Logger
}

// NewService creates the prompt service.
func NewService(deps ServiceDeps, logger *zerolog.Logger) *Service {
	return &Service{
		prompts:    deps.Prompts,
		playground: deps.Playground,
		data:       deps.Data,
		builder:    deps.Builder,
		renderer:   deps.Renderer,
		segmenter:  deps.Segmenter,
		invoker:    deps.Invoker,
		logger:     logger,
	}
}

// List returns a page of the project's prompts and the total count.
func (s *Service) List(ctx context.Context, projectID int64, search string, limit, offset int) ([]domain.Prompt, int, error) {
	prompts, total, err := s.prompts.ListPrompts(ctx, projectID, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list prompts: %w", err)
	}

	return prompts, total, nil
}

// Get returns a stored prompt.
func (s *Service) Get(ctx context.Context, projectID, promptID int64) (domain.Prompt, error) {
	p, err := s.prompts.FindPrompt(ctx, projectID, promptID)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("find prompt: %w", err)
	}

	if p == nil {
		return domain.Prompt{}, coreerrors.NewNotFound(coreerrors.MsgPromptNotFound)
	}

	return *p, nil
}

// Create stores a prompt in a project.
func (s *Service) Create(ctx context.Context, projectID int64, req Request) (domain.Prompt, error) {
	if err := req.validate(); err != nil {
		return domain.Prompt{}, err
	}

	project, err := s.data.FindProject(ctx, projectID)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("find project: %w", err)
	}

	if project == nil {
		return domain.Prompt{}, coreerrors.NewNotFound(coreerrors.MsgProjectNotFound)
	}

	created, err := s.prompts.CreatePrompt(ctx, domain.Prompt{
		ProjectID:    projectID,
		Name:         strings.TrimSpace(req.Name),
		Template:     req.Template,
		ProviderName: req.ProviderName,
	})
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("create prompt: %w", err)
	}

	return created, nil
}

// Update replaces a prompt's fields.
func (s *Service) Update(ctx context.Context, projectID, promptID int64, req Request) (domain.Prompt, error) {
	if err := req.validate(); err != nil {
		return domain.Prompt{}, err
	}

	existing, err := s.Get(ctx, projectID, promptID)
	if err != nil {
		return domain.Prompt{}, err
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Template = req.Template
	existing.ProviderName = req.ProviderName

	updated, err := s.prompts.UpdatePrompt(ctx, existing)
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("update prompt: %w", err)
	}

	return updated, nil
}

// Delete removes a prompt.
func (s *Service) Delete(ctx context.Context, projectID, promptID int64) error {
	if _, err := s.Get(ctx, projectID, promptID); err != nil {
		return err
	}

	if err := s.prompts.DeletePrompt(ctx, projectID, promptID); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}

	return nil
}

// Default returns the built-in prompt.
func (s *Service) Default() domain.Prompt {
	return domain.Prompt{Name: DefaultPromptName, Template: DefaultTemplate, ProviderName: DefaultProviderName}
}

// FindOrDefault returns the stored prompt, or the default one when promptID is nil.
func (s *Service) FindOrDefault(ctx context.Context, projectID int64, promptID *int64) (domain.Prompt, error) {
	if promptID == nil {
		return s.Default(), nil
	}

	return s.Get(ctx, projectID, *promptID)
}

// Variables describes the variable tree for the given key and language.
func (s *Service) Variables(ctx context.Context, projectID int64, keyID, targetLanguageID *int64) ([]VariableDTO, error) {
	root, err := s.builder.Build(ctx, projectID, keyID, targetLanguageID)
	if err != nil {
		return nil, err
	}

	out := make([]VariableDTO, 0, len(root.Props))
	for _, v := range root.Props {
		out = append(out, v.DTO())
	}

	return out, nil
}

// Render renders req.Template. Template syntax errors become
// LLM_TEMPLATE_PARSING_ERROR with reason, line and column.
func (s *Service) Render(ctx context.Context, projectID int64, req RunRequest) (string, error) {
	root, err := s.builder.Build(ctx, projectID, &req.KeyID, &req.TargetLanguageID)
	if err != nil {
		return "", err
	}

	rendered, err := s.renderer.Render(req.Template, root)
	if err != nil {
		var syntaxErr *coreerrors.TemplateSyntaxError
		if errors.As(err, &syntaxErr) {
			return "", coreerrors.NewBadRequest(coreerrors.MsgLLMTemplateParsingError, syntaxErr.Reason, syntaxErr.Line, syntaxErr.Column)
		}

		return "", fmt.Errorf("render prompt: %w", err)
	}

	return rendered, nil
}

// Messages segments a rendered prompt using the key's screenshots.
func (s *Service) Messages(ctx context.Context, rendered string, keyID int64) ([]domain.Message, error) {
	key, err := s.data.FindKey(ctx, keyID)
	if err != nil {
		return nil, fmt.Errorf("find key: %w", err)
	}

	if key == nil {
		return nil, coreerrors.NewNotFound(coreerrors.MsgKeyNotFound)
	}

	return s.segmenter.Segment(ctx, rendered, key)
}

// Run invokes the provider and parses a JSON response into ParsedJSON.
// Transport failures and vendor client errors become LLM_PROVIDER_ERROR.
func (s *Service) Run(ctx context.Context, organizationID int64, messages []domain.Message, provider string, priority *domain.Priority) (domain.PromptResult, error) {
	if provider == "" {
		provider = DefaultProviderName
	}

	result, err := s.invoker.Invoke(ctx, organizationID, provider, messages, priority)
	if err != nil {
		return domain.PromptResult{}, providerError(err)
	}

	if parsed, ok := extractJSONObject(result.Response); ok {
		result.ParsedJSON = parsed
	}

	return result, nil
}

// TranslationFromResult extracts the translation from a parsed result.
func (s *Service) TranslationFromResult(result domain.PromptResult) (domain.MTResult, error) {
	if result.ParsedJSON == nil {
		return domain.MTResult{}, coreerrors.NewBadRequest(coreerrors.MsgLLMProviderNotReturnedJSON)
	}

	output, ok := stringField(result.ParsedJSON, fieldOutput)
	if !ok {
		return domain.MTResult{}, coreerrors.NewBadRequest(coreerrors.MsgLLMProviderNotReturnedJSON)
	}

	description, _ := stringField(result.ParsedJSON, fieldContextDescription)

	return domain.MTResult{
		Translated:         output,
		ContextDescription: description,
		Price:              domain.ValueOrZero(result.Price),
		Usage:              result.Usage,
	}, nil
}

// TranslateViaPrompt renders, segments and runs a prompt and returns the translation.
func (s *Service) TranslateViaPrompt(ctx context.Context, projectID int64, req RunRequest, priority *domain.Priority) (domain.MTResult, error) {
	project, err := s.data.FindProject(ctx, projectID)
	if err != nil {
		return domain.MTResult{}, fmt.Errorf("find project: %w", err)
	}

	if project == nil {
		return domain.MTResult{}, coreerrors.NewNotFound(coreerrors.MsgProjectNotFound)
	}

	result, _, err := s.execute(ctx, project, req, priority)
	if err != nil {
		return domain.MTResult{}, err
	}

	return s.TranslationFromResult(result)
}

// TranslateAndUpdate translates and stores the translation.
func (s *Service) TranslateAndUpdate(ctx context.Context, projectID int64, req RunRequest, priority *domain.Priority) (domain.MTResult, error) {
	mt, err := s.TranslateViaPrompt(ctx, projectID, req, priority)
	if err != nil {
		return domain.MTResult{}, err
	}

	if err := s.data.SetTranslation(ctx, req.KeyID, req.TargetLanguageID, mt.Translated); err != nil {
		return domain.MTResult{}, fmt.Errorf("store translation: %w", err)
	}

	s.logger.Info().
		Int64(logKeyProject, projectID).
		Int64(logKeyKey, req.KeyID).
		Int64(logKeyLanguage, req.TargetLanguageID).
		Msg("machine translation stored")

	return mt, nil
}

// Playground runs a prompt at high priority. When the model returns an
// output, it replaces the user's stored playground results in the project.
func (s *Service) Playground(ctx context.Context, projectID, userID int64, req RunRequest) (RunResponse, error) {
	project, err := s.data.FindProject(ctx, projectID)
	if err != nil {
		return RunResponse{}, fmt.Errorf("find project: %w", err)
	}

	if project == nil {
		return RunResponse{}, coreerrors.NewNotFound(coreerrors.MsgProjectNotFound)
	}

	result, rendered, err := s.execute(ctx, project, req, domain.PriorityPtr(domain.PriorityHigh))
	if err != nil {
		return RunResponse{}, err
	}

	if output, ok := stringField(result.ParsedJSON, fieldOutput); ok {
		description, _ := stringField(result.ParsedJSON, fieldContextDescription)

		err := s.playground.ReplacePlaygroundResult(ctx, domain.PlaygroundResult{
			ProjectID:          projectID,
			UserID:             userID,
			KeyID:              req.KeyID,
			LanguageID:         req.TargetLanguageID,
			Translation:        output,
			ContextDescription: description,
		})
		if err != nil {
			s.logger.Error().Err(err).Int64(logKeyProject, projectID).Int64(logKeyUser, userID).Msg("failed to store playground result")
		}
	}

	return RunResponse{
		Prompt:     rendered,
		Result:     result.Response,
		ParsedJSON: result.ParsedJSON,
		Price:      result.Price,
		Usage:      result.Usage,
	}, nil
}

func (s *Service) execute(ctx context.Context, project *domain.Project, req RunRequest, priority *domain.Priority) (domain.PromptResult, string, error) {
	rendered, err := s.Render(ctx, project.ID, req)
	if err != nil {
		return domain.PromptResult{}, "", err
	}

	messages, err := s.Messages(ctx, rendered, req.KeyID)
	if err != nil {
		return domain.PromptResult{}, "", err
	}

	result, err := s.Run(ctx, project.OrganizationID, messages, req.Provider, priority)
	if err != nil {
		return domain.PromptResult{}, "", err
	}

	return result, rendered, nil
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, "name")
	}

	if strings.TrimSpace(r.Template) == "" {
		return coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, "template")
	}

	return nil
}

// providerError turns failures to reach or use a vendor into LLM_PROVIDER_ERROR.
// Typed errors, cancellation and vendor server errors pass through.
func providerError(err error) error {
	var statusErr *llm.HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= http.StatusInternalServerError {
			return err
		}

		return coreerrors.NewBadRequest(coreerrors.MsgLLMProviderError, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return coreerrors.NewBadRequest(coreerrors.MsgLLMProviderError, err.Error())
	}

	return err
}
