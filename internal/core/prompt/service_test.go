package prompt

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/ports/mocks"
)

type invocation struct {
	organizationID int64
	provider       string
	messages       []domain.Message
	priority       *domain.Priority
}

type fakeInvoker struct {
	mu       sync.Mutex
	calls    []invocation
	response domain.PromptResult
	err      error
}

func (f *fakeInvoker) Invoke(_ context.Context, organizationID int64, name string, messages []domain.Message, priority *domain.Priority) (domain.PromptResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, invocation{organizationID: organizationID, provider: name, messages: messages, priority: priority})

	return f.response, f.err
}

type serviceFixture struct {
	store      *mocks.ProjectStore
	files      *mocks.ScreenshotStore
	prompts    *mocks.PromptRepository
	playground *mocks.PlaygroundRepository
	invoker    *fakeInvoker
	service    *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := zerolog.Nop()
	f := &serviceFixture{
		store:      projectFixture(t),
		files:      mocks.NewScreenshotStore(),
		prompts:    mocks.NewPromptRepository(),
		playground: mocks.NewPlaygroundRepository(),
		invoker: &fakeInvoker{response: domain.PromptResult{
			Response: "```json\n{\"output\":\"{count, plural, one {# Artikel} other {# Artikel}}\",\"contextDescription\":\"cart badge\"}\n```",
			Price:    domain.Int64Ptr(12),
			Usage:    &domain.Usage{TotalTokens: domain.Int64Ptr(40)},
		}},
	}
	f.files.Put("a.png", []byte("png-a"))
	f.files.Put("b.png", []byte("png-b"))

	f.service = NewService(ServiceDeps{
		Prompts:    f.prompts,
		Playground: f.playground,
		Data:       f.store,
		Builder:    NewVariableBuilder(f.store, &logger),
		Renderer:   NewRenderer(&logger),
		Segmenter:  NewSegmenter(f.files, nil, &logger),
		Invoker:    f.invoker,
	}, &logger)

	return f
}

func runRequest(tpl string) RunRequest {
	return RunRequest{Template: tpl, KeyID: testKeyID, TargetLanguageID: langDE, Provider: "gpt"}
}

func TestService_PromptCRUD(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, testProjectID, Request{Name: " Short ", Template: "{{fragment.intro}}", ProviderName: "gpt"})
	require.NoError(t, err)
	assert.Equal(t, "Short", created.Name)

	_, err = f.service.Create(ctx, 404, Request{Name: "x", Template: "y"})
	assert.ErrorIs(t, err, coreerrors.ErrNotFound)

	_, err = f.service.Create(ctx, testProjectID, Request{Name: "x"})
	var badReq *coreerrors.BadRequestError
	require.ErrorAs(t, err, &badReq)
	assert.Equal(t, []any{"template"}, badReq.Params)

	updated, err := f.service.Update(ctx, testProjectID, created.ID, Request{Name: "Long", Template: "t", ProviderName: "claude"})
	require.NoError(t, err)
	assert.Equal(t, "claude", updated.ProviderName)

	list, total, err := f.service.List(ctx, testProjectID, "lon", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)

	found, err := f.service.FindOrDefault(ctx, testProjectID, &created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Long", found.Name)

	def, err := f.service.FindOrDefault(ctx, testProjectID, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, def.Template)
	assert.Equal(t, DefaultProviderName, def.ProviderName)

	require.NoError(t, f.service.Delete(ctx, testProjectID, created.ID))

	_, err = f.service.Get(ctx, testProjectID, created.ID)
	var notFound *coreerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, coreerrors.MsgPromptNotFound, notFound.Code)
}

func TestService_RenderTemplateErrorIsBadRequest(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Render(context.Background(), testProjectID, runRequest("line\n  {{#if key.name}}"))

	var badReq *coreerrors.BadRequestError
	require.ErrorAs(t, err, &badReq)
	assert.Equal(t, coreerrors.MsgLLMTemplateParsingError, badReq.Code)
	require.Len(t, badReq.Params, 3)
	assert.Equal(t, 2, badReq.Params[1])
	assert.Equal(t, 3, badReq.Params[2])
}

func TestService_TranslateAndUpdate(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req := runRequest("Key {{key.name}} to {{target.language}}\n{{screenshots.all}}\n{{fragment.translateJson}}")

	mt, err := f.service.TranslateAndUpdate(ctx, testProjectID, req, domain.PriorityPtr(domain.PriorityLow))
	require.NoError(t, err)

	assert.Equal(t, "{count, plural, one {# Artikel} other {# Artikel}}", mt.Translated)
	assert.Equal(t, "cart badge", mt.ContextDescription)
	assert.Equal(t, int64(12), mt.Price)

	stored, ok := f.store.Translation(testKeyID, langDE)
	require.True(t, ok)
	assert.Equal(t, mt.Translated, stored)

	require.Len(t, f.invoker.calls, 1)
	call := f.invoker.calls[0]
	assert.Equal(t, testOrgID, call.organizationID)
	assert.Equal(t, "gpt", call.provider)
	assert.Equal(t, domain.PriorityLow, *call.priority)

	require.Len(t, call.messages, 5)
	assert.Equal(t, domain.TextMessage("Key cart.items to German\n"), call.messages[0])
	assert.Equal(t, domain.ImageMessage([]byte("png-a")), call.messages[1])
	assert.Equal(t, domain.TextMessage("\n"), call.messages[2])
	assert.Equal(t, domain.ImageMessage([]byte("png-b")), call.messages[3])
	assert.Contains(t, call.messages[4].Text, JSONMarker)
}

func TestService_TranslationRequiresJSON(t *testing.T) {
	f := newServiceFixture(t)
	f.invoker.response = domain.PromptResult{Response: "Hallo"}

	_, err := f.service.TranslateViaPrompt(context.Background(), testProjectID, runRequest("Translate"), nil)

	var badReq *coreerrors.BadRequestError
	require.ErrorAs(t, err, &badReq)
	assert.Equal(t, coreerrors.MsgLLMProviderNotReturnedJSON, badReq.Code)

	_, err = f.service.TranslationFromResult(domain.PromptResult{ParsedJSON: map[string]any{"result": "x"}})
	require.ErrorAs(t, err, &badReq)
}

func TestService_PlaygroundStoresResult(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.playground.ReplacePlaygroundResult(ctx, domain.PlaygroundResult{ProjectID: testProjectID, UserID: 5, KeyID: 1, Translation: "old"}))

	resp, err := f.service.Playground(ctx, testProjectID, 5, runRequest("Translate {{source.translation}}"))
	require.NoError(t, err)

	assert.Equal(t, "Translate {count, plural, one {# item} other {# items}}", resp.Prompt)
	assert.Equal(t, "cart badge", resp.ParsedJSON["contextDescription"])
	assert.Equal(t, domain.PriorityHigh, *f.invoker.calls[0].priority)

	results, err := f.playground.ListPlaygroundResults(ctx, testProjectID, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, testKeyID, results[0].KeyID)
	assert.Equal(t, langDE, results[0].LanguageID)
}

func TestService_PlaygroundWithoutOutputKeepsResults(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.invoker.response = domain.PromptResult{Response: "plain answer"}

	require.NoError(t, f.playground.ReplacePlaygroundResult(ctx, domain.PlaygroundResult{ProjectID: testProjectID, UserID: 5, Translation: "old"}))

	resp, err := f.service.Playground(ctx, testProjectID, 5, runRequest("Hi"))
	require.NoError(t, err)
	assert.Nil(t, resp.ParsedJSON)
	assert.Equal(t, "plain answer", resp.Result)

	results, err := f.playground.ListPlaygroundResults(ctx, testProjectID, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "old", results[0].Translation)
}

func TestService_RunWrapsProviderFailures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantWrapped bool
	}{
		{name: "transport", err: &url.Error{Op: "Post", URL: "http://llm", Err: errors.New("connection refused")}, wantWrapped: true},
		{name: "client status", err: &llm.HTTPStatusError{StatusCode: 404, Body: "no model"}, wantWrapped: true},
		{name: "server status", err: &llm.HTTPStatusError{StatusCode: 502, Body: "bad gateway"}},
		{name: "rate limited", err: &coreerrors.RateLimitedError{}},
		{name: "unknown provider", err: coreerrors.NewBadRequest(coreerrors.MsgLLMProviderNotFound, "gpt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			f.invoker.err = tt.err

			_, err := f.service.Run(context.Background(), testOrgID, nil, "", nil)
			require.Error(t, err)
			assert.Equal(t, DefaultProviderName, f.invoker.calls[0].provider)

			var badReq *coreerrors.BadRequestError
			if tt.wantWrapped {
				require.ErrorAs(t, err, &badReq)
				assert.Equal(t, coreerrors.MsgLLMProviderError, badReq.Code)

				return
			}

			assert.Equal(t, tt.err, err)
		})
	}
}

func TestService_Variables(t *testing.T) {
	f := newServiceFixture(t)

	vars, err := f.service.Variables(context.Background(), testProjectID, int64Ptr(testKeyID), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}

	assert.Equal(t, []string{"source", "target", "other", "project", "key", "relatedKeys", "translationMemory", "screenshots", "fragment"}, names)
}
