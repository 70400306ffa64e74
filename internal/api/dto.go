package api

import (
	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
)

type providerRequest struct {
	Name                  string   `json:"name"`
	Type                  string   `json:"type"`
	Priority              string   `json:"priority"`
	APIKey                string   `json:"apiKey"`
	APIURL                string   `json:"apiUrl"`
	Model                 string   `json:"model"`
	Deployment            string   `json:"deployment"`
	KeepAlive             string   `json:"keepAlive"`
	Format                string   `json:"format"`
	PricePerMillionInput  *float64 `json:"pricePerMillionInput"`
	PricePerMillionOutput *float64 `json:"pricePerMillionOutput"`
}

func (r providerRequest) toService() llm.ProviderRequest {
	return llm.ProviderRequest{
		Name:                  r.Name,
		Type:                  r.Type,
		Priority:              r.Priority,
		APIKey:                r.APIKey,
		APIURL:                r.APIURL,
		Model:                 r.Model,
		Deployment:            r.Deployment,
		KeepAlive:             r.KeepAlive,
		Format:                r.Format,
		PricePerMillionInput:  r.PricePerMillionInput,
		PricePerMillionOutput: r.PricePerMillionOutput,
	}
}

type providerModel struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Type                  string   `json:"type"`
	Priority              *string  `json:"priority"`
	APIKey                string   `json:"apiKey,omitempty"`
	APIURL                string   `json:"apiUrl,omitempty"`
	Model                 string   `json:"model,omitempty"`
	Deployment            string   `json:"deployment,omitempty"`
	KeepAlive             string   `json:"keepAlive,omitempty"`
	Format                string   `json:"format,omitempty"`
	PricePerMillionInput  *float64 `json:"pricePerMillionInput,omitempty"`
	PricePerMillionOutput *float64 `json:"pricePerMillionOutput,omitempty"`
}

func toProviderModel(cfg domain.ProviderConfig) providerModel {
	var priority *string

	if cfg.Priority != nil {
		p := string(*cfg.Priority)
		priority = &p
	}

	return providerModel{
		ID:                    cfg.ID.Int64(),
		Name:                  cfg.Name,
		Type:                  string(cfg.Type),
		Priority:              priority,
		APIKey:                cfg.APIKey,
		APIURL:                cfg.APIURL,
		Model:                 cfg.Model,
		Deployment:            cfg.Deployment,
		KeepAlive:             cfg.KeepAlive,
		Format:                cfg.Format,
		PricePerMillionInput:  cfg.PricePerMillionInput,
		PricePerMillionOutput: cfg.PricePerMillionOutput,
	}
}

func toProviderModels(cfgs []domain.ProviderConfig) []providerModel {
	out := make([]providerModel, 0, len(cfgs))
	for _, cfg := range cfgs {
		out = append(out, toProviderModel(cfg))
	}

	return out
}

type messageModel struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Image []byte `json:"image,omitempty"`
}

type runRequest struct {
	Provider string         `json:"provider"`
	Priority string         `json:"priority"`
	Messages []messageModel `json:"messages"`
}

type promptResultModel struct {
	Response     string         `json:"response"`
	ParsedJSON   map[string]any `json:"parsedJson,omitempty"`
	Usage        *domain.Usage  `json:"usage,omitempty"`
	Price        *int64         `json:"price,omitempty"`
	ProviderID   int64          `json:"providerId"`
	ProviderType string         `json:"providerType"`
	Model        string         `json:"model,omitempty"`
}

func toPromptResultModel(r domain.PromptResult) promptResultModel {
	return promptResultModel{
		Response:     r.Response,
		ParsedJSON:   r.ParsedJSON,
		Usage:        r.Usage,
		Price:        r.Price,
		ProviderID:   r.ProviderID.Int64(),
		ProviderType: string(r.ProviderType),
		Model:        r.Model,
	}
}

type promptRequest struct {
	Name         string `json:"name"`
	Template     string `json:"template"`
	ProviderName string `json:"providerName"`
}

type promptModel struct {
	ID           int64  `json:"id"`
	ProjectID    int64  `json:"projectId,omitempty"`
	Name         string `json:"name"`
	Template     string `json:"template"`
	ProviderName string `json:"providerName"`
}

func toPromptModel(p domain.Prompt) promptModel {
	return promptModel{ID: p.ID, ProjectID: p.ProjectID, Name: p.Name, Template: p.Template, ProviderName: p.ProviderName}
}

type promptPage struct {
	Items []promptModel `json:"items"`
	Total int           `json:"total"`
}

type promptRunRequest struct {
	Template         string `json:"template"`
	KeyID            int64  `json:"keyId"`
	TargetLanguageID int64  `json:"targetLanguageId"`
	Provider         string `json:"provider"`
}

type promptRunResponse struct {
	Prompt     string         `json:"prompt"`
	Result     string         `json:"result"`
	ParsedJSON map[string]any `json:"parsedJson,omitempty"`
	Price      *int64         `json:"price,omitempty"`
	Usage      *domain.Usage  `json:"usage,omitempty"`
}

func toPromptRunResponse(r prompt.RunResponse) promptRunResponse {
	return promptRunResponse{Prompt: r.Prompt, Result: r.Result, ParsedJSON: r.ParsedJSON, Price: r.Price, Usage: r.Usage}
}

type translateRequest struct {
	PromptID         *int64 `json:"promptId"`
	Template         string `json:"template"`
	KeyID            int64  `json:"keyId"`
	TargetLanguageID int64  `json:"targetLanguageId"`
	Provider         string `json:"provider"`
	Priority         string `json:"priority"`
}

type translateResponse struct {
	Output             string        `json:"output"`
	ContextDescription string        `json:"contextDescription,omitempty"`
	Price              int64         `json:"price"`
	Usage              *domain.Usage `json:"usage,omitempty"`
}
