package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

// openAIAdapter talks to Azure OpenAI deployments, or to any OpenAI-compatible
// endpoint when the config has no deployment.
type openAIAdapter struct {
	httpClient *http.Client
}

var _ Adapter = (*openAIAdapter)(nil)

func newOpenAIAdapter(httpClient *http.Client) *openAIAdapter {
	return &openAIAdapter{httpClient: httpClient}
}

func (a *openAIAdapter) clientConfig(cfg domain.ProviderConfig) openai.ClientConfig {
	if cfg.Deployment == "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.APIURL != "" {
			clientCfg.BaseURL = cfg.APIURL
		}

		clientCfg.HTTPClient = a.httpClient

		return clientCfg
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.APIURL)
	clientCfg.APIVersion = openAIAPIVersion
	clientCfg.AzureModelMapperFunc = func(string) string {
		return cfg.Deployment
	}
	clientCfg.HTTPClient = a.httpClient

	return clientCfg
}

// Translate implements Adapter.
func (a *openAIAdapter) Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error) {
	model := cfg.Model
	if model == "" {
		model = cfg.Deployment
	}

	req := openai.ChatCompletionRequest{
		Model:               model,
		Messages:            openAIMessages(messages),
		MaxCompletionTokens: openAIMaxCompletionTokens,
		ResponseFormat:      openAIResponseFormat(messages, cfg.Format),
	}

	client := openai.NewClientWithConfig(a.clientConfig(cfg))

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.PromptResult{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return domain.PromptResult{}, fmt.Errorf("openai: %w", coreerrors.ErrEmptyResponse)
	}

	return domain.PromptResult{
		Response: resp.Choices[0].Message.Content,
		Usage:    openAIUsage(resp.Usage),
		Model:    resp.Model,
	}, nil
}

func openAIMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, m := range messages {
		switch m.Type {
		case domain.MessageText:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Text})
		case domain.MessageImage:
			out = append(out, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:" + imageMIME(m.Image) + ";base64," + encodeImage(m.Image),
						},
					},
				},
			})
		}
	}

	return out
}

func openAIResponseFormat(messages []domain.Message, format string) *openai.ChatCompletionResponseFormat {
	if !wantsJSON(messages) {
		return nil
	}

	switch format {
	case formatJSONObject:
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	case formatJSONSchema:
		schema, err := json.Marshal(translationSchema())
		if err != nil {
			return nil
		}

		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   jsonSchemaName,
				Schema: json.RawMessage(schema),
				Strict: true,
			},
		}
	default:
		return nil
	}
}

func openAIUsage(u openai.Usage) *domain.Usage {
	usage := &domain.Usage{
		InputTokens:  int64Ptr(u.PromptTokens),
		OutputTokens: int64Ptr(u.CompletionTokens),
		TotalTokens:  int64Ptr(u.TotalTokens),
	}

	if u.PromptTokensDetails != nil {
		usage.CachedTokens = int64Ptr(u.PromptTokensDetails.CachedTokens)
	}

	return usage
}

// classifyOpenAIError maps go-openai errors onto the shared vendor error taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf(errFmtAPIStatusOnly, coreerrors.ErrTooManyRequests, apiErr.HTTPStatusCode)
		}

		if apiErr.HTTPStatusCode >= http.StatusBadRequest && apiErr.HTTPStatusCode < http.StatusInternalServerError && apiErr.Message != "" {
			return coreerrors.NewBadRequest(coreerrors.MsgLLMProviderError, apiErr.Message)
		}

		return &HTTPStatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf(errFmtAPIStatusOnly, coreerrors.ErrTooManyRequests, reqErr.HTTPStatusCode)
		}

		return &HTTPStatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return fmt.Errorf(errFmtVendorRequest, domain.ProviderOpenAI, err)
}
