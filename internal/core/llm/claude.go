package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

// claudeAdapter calls the Anthropic messages API. Base URL and key come from
// the provider config on every call.
type claudeAdapter struct {
	client anthropic.Client
}

var _ Adapter = (*claudeAdapter)(nil)

type claudeResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// newClaudeAdapter disables SDK retries: a 429 must reach the service so it can
// suspend the config and rotate.
func newClaudeAdapter(httpClient *http.Client) *claudeAdapter {
	return &claudeAdapter{
		client: anthropic.NewClient(
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
	}
}

// Translate implements Adapter. Usage is reported as a total only.
func (a *claudeAdapter) Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error) {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.APIURL),
		option.WithAPIKey(cfg.APIKey),
	}

	if format := claudeFormat(messages, cfg.Format); format != nil {
		opts = append(opts, option.WithJSONSet("response_format", format))
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.Model),
		MaxTokens: claudeMaxTokens,
		Messages:  claudeMessages(messages),
	}, opts...)
	if err != nil {
		return domain.PromptResult{}, claudeError(err)
	}

	text, ok := claudeText(resp)
	if !ok {
		return domain.PromptResult{}, fmt.Errorf("claude: %w", coreerrors.ErrEmptyResponse)
	}

	return domain.PromptResult{
		Response: text,
		Usage: &domain.Usage{
			TotalTokens: domain.Int64Ptr(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
		Model: string(resp.Model),
	}, nil
}

// claudeMessages sends every message as its own user turn.
func claudeMessages(messages []domain.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Type {
		case domain.MessageText:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		case domain.MessageImage:
			out = append(out, anthropic.NewUserMessage(anthropic.NewImageBlockBase64(imageMIME(m.Image), encodeImage(m.Image))))
		}
	}

	return out
}

func claudeFormat(messages []domain.Message, format string) *claudeResponseFormat {
	if !wantsJSON(messages) {
		return nil
	}

	switch format {
	case formatJSONObject:
		return &claudeResponseFormat{Type: formatJSONObject}
	case formatJSONSchema:
		return &claudeResponseFormat{
			Type:       formatJSONSchema,
			JSONSchema: &jsonSchemaSpec{Name: jsonSchemaName, Schema: translationSchema(), Strict: true},
		}
	default:
		return nil
	}
}

func claudeText(resp *anthropic.Message) (string, bool) {
	var (
		text  strings.Builder
		found bool
	)

	for _, block := range resp.Content {
		if block.Type == claudeBlockText {
			text.WriteString(block.Text)

			found = true
		}
	}

	return text.String(), found
}

// claudeError maps SDK status errors onto the same classes as the other vendors.
func claudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return vendorError(apiErr.StatusCode, []byte(apiErr.RawJSON()))
	}

	return fmt.Errorf(errFmtVendorRequest, domain.ProviderClaude, err)
}
