package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/ports/mocks"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
)

const (
	testOrgID     = int64(10)
	testProjectID = int64(1)
	testKeyID     = int64(100)
	langEN        = int64(1)
	langDE        = int64(2)
)

type fixture struct {
	handler    http.Handler
	vendor     *httptest.Server
	status     atomic.Int32
	requests   atomic.Int32
	providers  *mocks.ProviderRepository
	store      *mocks.ProjectStore
	playground *mocks.PlaygroundRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	f := &fixture{
		providers:  mocks.NewProviderRepository(),
		store:      mocks.NewProjectStore(),
		playground: mocks.NewPlaygroundRepository(),
	}
	f.status.Store(http.StatusOK)

	f.vendor = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)

		if status := int(f.status.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"vendor says no"}`))

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "llama3",
			"message": map[string]any{"content": `{"output":"Hallo","contextDescription":"greeting"}`},
		})
	}))
	t.Cleanup(f.vendor.Close)

	f.store.AddProject(domain.Project{ID: testProjectID, OrganizationID: testOrgID, Name: "Shop", BaseLanguageID: langEN})
	f.store.AddLanguage(domain.Language{ID: langEN, ProjectID: testProjectID, Tag: "en", Name: "English"})
	f.store.AddLanguage(domain.Language{ID: langDE, ProjectID: testProjectID, Tag: "de", Name: "German"})
	f.store.AddKey(domain.Key{ID: testKeyID, ProjectID: testProjectID, Name: "greeting"})
	require.NoError(t, f.store.SetTranslation(context.Background(), testKeyID, langEN, "Hello"))

	server := []domain.ProviderConfig{{
		ID:     domain.ServerProviderID(1),
		Name:   prompt.DefaultProviderName,
		Type:   domain.ProviderOllama,
		APIKey: "server-secret",
		APIURL: f.vendor.URL,
		Model:  "llama3",
	}}

	suspensions := llm.NewMemorySuspensionStore()
	selector := llm.NewSelector(f.providers, server, suspensions, llm.NewRotationState(), &logger)
	invoker := llm.NewService(selector, llm.NewDispatcher(llm.DispatcherOptions{Timeout: 5 * time.Second}, &logger),
		suspensions, nil, llm.ServiceOptions{MaxAttempts: 2, SuspendPeriod: time.Minute}, &logger)

	prompts := prompt.NewService(prompt.ServiceDeps{
		Prompts:    mocks.NewPromptRepository(),
		Playground: f.playground,
		Data:       f.store,
		Builder:    prompt.NewVariableBuilder(f.store, &logger),
		Renderer:   prompt.NewRenderer(&logger),
		Segmenter:  prompt.NewSegmenter(mocks.NewScreenshotStore(), nil, &logger),
		Invoker:    invoker,
	}, &logger)

	f.handler = NewServer(llm.NewProviderService(f.providers, selector, &logger), prompts, Options{}, &logger).Handler()

	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestProviders_CRUD(t *testing.T) {
	f := newFixture(t)
	base := "/v2/organizations/10/llm-providers"

	rec := f.do(t, http.MethodPost, base, providerRequest{Name: "gpt", Type: "openai", Priority: "low", APIURL: "https://api.openai.com/"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decode[providerModel](t, rec)
	assert.Equal(t, "OPENAI", created.Type)
	assert.Equal(t, "https://api.openai.com", created.APIURL)
	require.NotNil(t, created.Priority)
	assert.Equal(t, "LOW", *created.Priority)

	rec = f.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]providerModel](t, rec), 1)

	rec = f.do(t, http.MethodPut, base+"/1", providerRequest{Name: "gpt", Type: "GEMINI"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GEMINI", decode[providerModel](t, rec).Type)

	rec = f.do(t, http.MethodDelete, "/v2/organizations/99/llm-providers/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(coreerrors.MsgLLMProviderNotFound), decode[errorResponse](t, rec).Code)

	rec = f.do(t, http.MethodDelete, base+"/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestProviders_ServerProvidersHideKeys(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v2/organizations/10/llm-providers/server-providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	models := decode[[]providerModel](t, rec)
	require.Len(t, models, 1)
	assert.Equal(t, int64(-1), models[0].ID)
	assert.Empty(t, models[0].APIKey)
	assert.NotContains(t, rec.Body.String(), "server-secret")
}

func TestProviders_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		param  any
	}{
		{name: "unknown type", method: http.MethodPost, path: "/v2/organizations/10/llm-providers", body: providerRequest{Name: "x", Type: "mistral"}, param: "type"},
		{name: "bad org id", method: http.MethodGet, path: "/v2/organizations/abc/llm-providers", param: "organizationId"},
		{name: "bad priority on run", method: http.MethodPost, path: "/v2/organizations/10/llm-providers/run", body: runRequest{Priority: "urgent"}, param: "priority"},
		{name: "bad message type", method: http.MethodPost, path: "/v2/organizations/10/llm-providers/run", body: runRequest{Messages: []messageModel{{Type: "VIDEO"}}}, param: "messages.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decode[errorResponse](t, rec)
			assert.Equal(t, string(coreerrors.MsgValidationFailed), resp.Code)
			require.NotEmpty(t, resp.Params)
			assert.Equal(t, tt.param, resp.Params[0])
		})
	}
}

func TestRun_ReturnsParsedResult(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v2/organizations/10/llm-providers/run", runRequest{
		Messages: []messageModel{{Type: "TEXT", Text: "Translate Hello"}, {Type: "IMAGE", Image: []byte{1, 2}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[promptResultModel](t, rec)
	assert.Equal(t, "Hallo", result.ParsedJSON["output"])
	assert.Equal(t, int64(-1), result.ProviderID)
	assert.Equal(t, "OLLAMA", result.ProviderType)
}

func TestRun_RateLimitedSetsRetryAfter(t *testing.T) {
	f := newFixture(t)
	f.status.Store(http.StatusTooManyRequests)

	rec := f.do(t, http.MethodPost, "/v2/organizations/10/llm-providers/run", runRequest{Messages: []messageModel{{Type: "TEXT", Text: "hi"}}})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get(headerRetryAfter))
	assert.Equal(t, int32(1), f.requests.Load())
}

func TestRun_ExhaustedRetriesSetRetryAfter(t *testing.T) {
	f := newFixture(t)
	f.status.Store(http.StatusTooManyRequests)

	for i := 0; i < 3; i++ {
		f.providers.Add(domain.ProviderConfig{
			OrganizationID: testOrgID,
			Name:           prompt.DefaultProviderName,
			Type:           domain.ProviderOllama,
			APIURL:         f.vendor.URL,
			Model:          "llama3",
		})
	}

	rec := f.do(t, http.MethodPost, "/v2/organizations/10/llm-providers/run", runRequest{Messages: []messageModel{{Type: "TEXT", Text: "hi"}}})

	require.Equal(t, http.StatusTooManyRequests, rec.Code, rec.Body.String())
	assert.Equal(t, "60", rec.Header().Get(headerRetryAfter))
	assert.Equal(t, codeRateLimited, decode[errorResponse](t, rec).Code)
	assert.Equal(t, int32(2), f.requests.Load())
}

func TestRun_VendorClientErrorIsBadRequest(t *testing.T) {
	f := newFixture(t)
	f.status.Store(http.StatusNotFound)

	rec := f.do(t, http.MethodPost, "/v2/organizations/10/llm-providers/run", runRequest{Messages: []messageModel{{Type: "TEXT", Text: "hi"}}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(coreerrors.MsgLLMProviderError), decode[errorResponse](t, rec).Code)
}

func TestRun_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v2/organizations/10/llm-providers/run", runRequest{Provider: "missing", Messages: []messageModel{{Type: "TEXT", Text: "hi"}}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(coreerrors.MsgLLMProviderNotFound), decode[errorResponse](t, rec).Code)
}

func TestPrompts_CRUDAndDefault(t *testing.T) {
	f := newFixture(t)
	base := "/v2/projects/1/prompts"

	rec := f.do(t, http.MethodPost, base, promptRequest{Name: "Short", Template: "{{key.name}}", ProviderName: "default"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[promptModel](t, rec)

	rec = f.do(t, http.MethodGet, base+"?search=sho&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[promptPage](t, rec)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	rec = f.do(t, http.MethodPut, base+"/1", promptRequest{Name: "Long", Template: "t", ProviderName: "default"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Long", decode[promptModel](t, rec).Name)

	rec = f.do(t, http.MethodGet, base+"/default", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, prompt.DefaultTemplate, decode[promptModel](t, rec).Template)

	rec = f.do(t, http.MethodDelete, base+"/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, base+"/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(coreerrors.MsgPromptNotFound), decode[errorResponse](t, rec).Code)
	assert.Equal(t, int64(1), created.ID)

	rec = f.do(t, http.MethodGet, base+"?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrompts_Variables(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v2/projects/1/prompts/get-variables?keyId=100&targetLanguageId=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data []prompt.VariableDTO `json:"data"`
	}](t, rec)
	require.NotEmpty(t, body.Data)
	assert.Equal(t, "source", body.Data[0].Name)

	rec = f.do(t, http.MethodGet, "/v2/projects/1/prompts/get-variables?keyId=404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(coreerrors.MsgKeyNotFound), decode[errorResponse](t, rec).Code)
}

func TestPrompts_PlaygroundRun(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v2/projects/1/prompts/run",
		promptRunRequest{Template: "Translate {{source.translation}} to {{target.language}}", KeyID: testKeyID, TargetLanguageID: langDE},
		headerUserID, "5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[promptRunResponse](t, rec)
	assert.Equal(t, "Translate Hello to German", resp.Prompt)
	assert.Equal(t, "greeting", resp.ParsedJSON["contextDescription"])

	results, err := f.playground.ListPlaygroundResults(context.Background(), testProjectID, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Hallo", results[0].Translation)

	rec = f.do(t, http.MethodPost, "/v2/projects/1/prompts/run", promptRunRequest{Template: "x", KeyID: testKeyID, TargetLanguageID: langDE})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "user header is required")
}

func TestPrompts_PlaygroundTemplateError(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v2/projects/1/prompts/run",
		promptRunRequest{Template: "{{#each key}}", KeyID: testKeyID, TargetLanguageID: langDE}, headerUserID, "5")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, string(coreerrors.MsgLLMTemplateParsingError), resp.Code)
	require.Len(t, resp.Params, 3)
	assert.Equal(t, float64(1), resp.Params[1])
	assert.Equal(t, float64(1), resp.Params[2])
	assert.Equal(t, int32(0), f.requests.Load())
}

func TestPrompts_TranslateWithDefaultPrompt(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v2/projects/1/prompts/translate", translateRequest{KeyID: testKeyID, TargetLanguageID: langDE})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[translateResponse](t, rec)
	assert.Equal(t, "Hallo", resp.Output)
	assert.Equal(t, "greeting", resp.ContextDescription)

	stored, ok := f.store.Translation(testKeyID, langDE)
	require.True(t, ok)
	assert.Equal(t, "Hallo", stored)
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, retryAfterSeconds(now.Add(-time.Second), now))
	assert.Equal(t, 1, retryAfterSeconds(now.Add(200*time.Millisecond), now))
	assert.Equal(t, 3, retryAfterSeconds(now.Add(2100*time.Millisecond), now))
}
