package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

// geminiAdapter calls the Gemini generateContent REST endpoint.
type geminiAdapter struct {
	httpClient *http.Client
}

var _ Adapter = (*geminiAdapter)(nil)

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func newGeminiAdapter(httpClient *http.Client) *geminiAdapter {
	return &geminiAdapter{httpClient: httpClient}
}

// Translate implements Adapter.
func (a *geminiAdapter) Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error) {
	jsonOutput := wantsJSON(messages)

	parts := make([]geminiPart, 0, len(messages)+1)

	for _, m := range messages {
		switch m.Type {
		case domain.MessageText:
			parts = append(parts, geminiPart{Text: m.Text})
		case domain.MessageImage:
			parts = append(parts, geminiPart{InlineData: &geminiInlineData{
				MimeType: imageMIME(m.Image),
				Data:     encodeImage(m.Image),
			}})
		}
	}

	req := geminiRequest{}

	if jsonOutput {
		parts = append(parts, geminiPart{Text: geminiJSONReminder})
		req.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: contentTypeJSON}
	}

	req.Contents = []geminiContent{{Role: roleUser, Parts: parts}}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		cfg.APIURL, url.PathEscape(cfg.Model), url.QueryEscape(cfg.APIKey))

	var resp geminiResponse
	if err := postJSON(ctx, a.httpClient, endpoint, nil, req, &resp); err != nil {
		return domain.PromptResult{}, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.PromptResult{}, fmt.Errorf("gemini: %w", coreerrors.ErrEmptyResponse)
	}

	result := domain.PromptResult{
		Response: resp.Candidates[0].Content.Parts[0].Text,
		Model:    resp.ModelVersion,
	}

	if resp.UsageMetadata != nil {
		total := resp.UsageMetadata.TotalTokenCount
		if total == 0 {
			total = resp.UsageMetadata.PromptTokenCount + resp.UsageMetadata.CandidatesTokenCount
		}

		result.Usage = &domain.Usage{
			InputTokens:  int64Ptr(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64Ptr(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64Ptr(total),
		}
	}

	return result, nil
}
