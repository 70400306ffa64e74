package prompt

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports/mocks"
)

const (
	testProjectID = int64(1)
	testOrgID     = int64(10)
	testKeyID     = int64(100)
	langEN        = int64(1)
	langDE        = int64(2)
	langCS        = int64(3)
)

func int64Ptr(v int64) *int64 { return &v }

func projectFixture(t *testing.T) *mocks.ProjectStore {
	t.Helper()

	store := mocks.NewProjectStore()
	store.AddProject(domain.Project{ID: testProjectID, OrganizationID: testOrgID, Name: "Shop", Description: "An online shop", BaseLanguageID: langEN})
	store.AddLanguage(domain.Language{ID: langEN, ProjectID: testProjectID, Tag: "en", Name: "English"})
	store.AddLanguage(domain.Language{ID: langDE, ProjectID: testProjectID, Tag: "de", Name: "German", AINote: "Use Sie"})
	store.AddLanguage(domain.Language{ID: langCS, ProjectID: testProjectID, Tag: "cs", Name: "Czech"})
	store.AddKey(domain.Key{
		ID:          testKeyID,
		ProjectID:   testProjectID,
		Name:        "cart.items",
		Description: "Cart badge",
		IsPlural:    true,
		Screenshots: []domain.Screenshot{{ID: 1, Filename: "a.png"}, {ID: 2, Filename: "b.png"}},
	})
	store.AddKey(domain.Key{ID: 200, ProjectID: 99, Name: "foreign"})

	ctx := context.Background()
	require.NoError(t, store.SetTranslation(ctx, testKeyID, langEN, "{count, plural, one {# item} other {# items}}"))
	require.NoError(t, store.SetTranslation(ctx, testKeyID, langCS, "{count, plural, other {# položek}}"))

	store.SetMetadata(
		[]domain.TranslationMemoryItem{{KeyName: "cart.total", Source: "Total", Target: "Summe", Score: 0.9}},
		[]domain.RelatedKey{{KeyName: "cart.title", Source: "Cart", Target: "Warenkorb"}},
	)

	return store
}

func newTestBuilder(store *mocks.ProjectStore) *VariableBuilder {
	logger := zerolog.Nop()
	return NewVariableBuilder(store, &logger)
}

func valueAt(t *testing.T, root *Variable, path ...string) string {
	t.Helper()

	v := root
	for _, name := range path {
		v = v.Prop(name)
		require.NotNil(t, v, "missing %v", path)
	}

	value, err := v.Value()
	require.NoError(t, err)

	return value
}

func TestVariableBuilder_Build(t *testing.T) {
	store := projectFixture(t)

	root, err := newTestBuilder(store).Build(context.Background(), testProjectID, int64Ptr(testKeyID), int64Ptr(langDE))
	require.NoError(t, err)

	assert.Equal(t, "English", valueAt(t, root, "source", "language"))
	assert.Equal(t, "{count, plural, one {# item} other {# items}}", valueAt(t, root, "source", "translation"))
	assert.Equal(t, "German", valueAt(t, root, "target", "language"))
	assert.Equal(t, "Use Sie", valueAt(t, root, "target", "languageNote"))
	assert.Equal(t, "", valueAt(t, root, "target", "translation"))
	assert.Equal(t, "one (e.g. 1 item)\nother (e.g. 2 items)", valueAt(t, root, "target", "pluralFormExamples"))
	assert.Equal(t, "one other", valueAt(t, root, "target", "exactForms"))
	assert.Equal(t, "{count, plural, one {...} other {...}}", valueAt(t, root, "target", "exampleIcuPlural"))
	assert.Equal(t, "Shop", valueAt(t, root, "project", "name"))
	assert.Equal(t, "cart.items", valueAt(t, root, "key", "name"))
	assert.Equal(t, "Cart badge", valueAt(t, root, "key", "description"))
	assert.Equal(t, "[[screenshot_small_0]]", valueAt(t, root, "screenshots", "first"))
	assert.Equal(t, "[[screenshot_full_0]]\n[[screenshot_full_1]]", valueAt(t, root, "screenshots", "allFull"))

	other := root.Prop("other")
	require.Len(t, other.Props, 1)
	assert.Equal(t, "cs", other.Props[0].Name)
	assert.Equal(t, "{count, plural, other {# položek}}", valueAt(t, root, "other", "cs", "translation"))

	assert.Equal(t, 0, store.MetadataCalls, "metadata must stay lazy")
	assert.Equal(t, `{"key":"cart.total","source":"Total","target":"Summe"}`, valueAt(t, root, "translationMemory", "json"))
	assert.Equal(t, `{"keyName":"cart.title","source":"Cart","target":"Warenkorb"}`, valueAt(t, root, "relatedKeys", "json"))
	assert.Equal(t, 2, store.MetadataCalls)

	require.NotNil(t, root.Prop(fragmentGroup).Prop(FragmentIntro))
}

func TestVariableBuilder_WithoutKeyAndTarget(t *testing.T) {
	store := projectFixture(t)

	root, err := newTestBuilder(store).Build(context.Background(), testProjectID, nil, nil)
	require.NoError(t, err)

	truthy, err := root.Prop("target").Prop("language").Truthy()
	require.NoError(t, err)
	assert.False(t, truthy)

	assert.Len(t, root.Prop("other").Props, 2)
	assert.Equal(t, "", valueAt(t, root, "translationMemory", "json"))
	assert.Equal(t, "", valueAt(t, root, "screenshots", "all"))
	assert.Equal(t, 0, store.MetadataCalls)
}

func TestVariableBuilder_NotFound(t *testing.T) {
	store := projectFixture(t)
	builder := newTestBuilder(store)

	tests := []struct {
		name      string
		projectID int64
		keyID     *int64
		langID    *int64
		code      coreerrors.Message
	}{
		{name: "missing key", projectID: testProjectID, keyID: int64Ptr(404), code: coreerrors.MsgKeyNotFound},
		{name: "key in other project", projectID: testProjectID, keyID: int64Ptr(200), code: coreerrors.MsgKeyNotFound},
		{name: "missing project", projectID: 404, code: coreerrors.MsgProjectNotFound},
		{name: "missing language", projectID: testProjectID, langID: int64Ptr(404), code: coreerrors.MsgLanguageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.Build(context.Background(), tt.projectID, tt.keyID, tt.langID)

			var notFound *coreerrors.NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.code, notFound.Code)
		})
	}
}

func TestVariable_DTO(t *testing.T) {
	root := Group("",
		Group("key", NewVariable("name", "k"), OptionalVariable("missing", nil)),
		Group("memory", LazyVariable("json", "Memory", func() (string, error) {
			t.Fatal("DTO must not evaluate lazy values")
			return "", nil
		})),
	)

	key := root.Prop("key").DTO()
	require.Len(t, key.Props, 2)
	assert.Nil(t, key.Value)
	require.NotNil(t, key.Props[0].Value)
	assert.Equal(t, "k", *key.Props[0].Value)
	assert.Nil(t, key.Props[1].Value)
	assert.Nil(t, key.Props[1].Props)

	memory := root.Prop("memory").DTO()
	require.NotNil(t, memory.Props[0].Description)
	assert.Equal(t, "Memory", *memory.Props[0].Description)
}

func TestVariable_WithPropSharesOtherChildren(t *testing.T) {
	a := NewVariable("a", "1")
	root := Group("", a, NewVariable("b", "2"))

	replaced := root.WithProp(NewVariable("b", "3"))
	extended := root.WithProp(NewVariable("c", "4"))

	assert.Same(t, a, replaced.Prop("a"))
	assert.Equal(t, "3", valueAt(t, replaced, "b"))
	assert.Equal(t, "2", valueAt(t, root, "b"))
	assert.Len(t, extended.Props, 3)
}
