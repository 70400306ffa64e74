package llm

import (
	"context"
	"net/http"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// ollamaAdapter calls a self-hosted Ollama chat endpoint. Ollama reports no billable usage.
type ollamaAdapter struct {
	httpClient *http.Client
}

var _ Adapter = (*ollamaAdapter)(nil)

type ollamaRequest struct {
	Model     string          `json:"model"`
	Messages  []ollamaMessage `json:"messages"`
	Stream    bool            `json:"stream"`
	KeepAlive string          `json:"keep_alive,omitempty"`
	Format    string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func newOllamaAdapter(httpClient *http.Client) *ollamaAdapter {
	return &ollamaAdapter{httpClient: httpClient}
}

// Translate implements Adapter.
func (a *ollamaAdapter) Translate(ctx context.Context, messages []domain.Message, cfg domain.ProviderConfig) (domain.PromptResult, error) {
	req := ollamaRequest{
		Model:     cfg.Model,
		Messages:  make([]ollamaMessage, 0, len(messages)),
		KeepAlive: cfg.KeepAlive,
	}

	for _, m := range messages {
		switch m.Type {
		case domain.MessageText:
			req.Messages = append(req.Messages, ollamaMessage{Role: roleUser, Content: m.Text})
		case domain.MessageImage:
			req.Messages = append(req.Messages, ollamaMessage{Role: roleUser, Images: []string{encodeImage(m.Image)}})
		}
	}

	if cfg.Format == ollamaFormatJSON && wantsJSON(messages) {
		req.Format = ollamaFormatJSON
	}

	var resp ollamaResponse
	if err := postJSON(ctx, a.httpClient, cfg.APIURL+"/api/chat", nil, req, &resp); err != nil {
		return domain.PromptResult{}, err
	}

	return domain.PromptResult{
		Response: resp.Message.Content,
		Model:    resp.Model,
	}, nil
}
