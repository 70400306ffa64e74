package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseICUPlural(t *testing.T) {
	parsed, ok := parseICUPlural("{count, plural, =0 {No items} one {# item} other {# items of {name}}}")
	require.True(t, ok)

	assert.Equal(t, "count", parsed.param)
	assert.Equal(t, map[string]string{
		"=0":    "No items",
		"one":   "# item",
		"other": "# items of {name}",
	}, parsed.forms)
}

func TestParseICUPlural_Rejects(t *testing.T) {
	for _, src := range []string{
		"plain text",
		"{count, select, male {He} other {They}}",
		"{count, plural, one {# item}}",
		"{count, plural, one {# item} other {# items}",
	} {
		_, ok := parseICUPlural(src)
		assert.False(t, ok, src)
	}
}

func TestPluralExamples_EnglishToCzech(t *testing.T) {
	examples, ok := pluralExamples("{count, plural, one {# dog} other {# dogs}}", "en", "cs")
	require.True(t, ok)

	categories := make([]string, 0, len(examples))
	for _, e := range examples {
		categories = append(categories, e.category)
	}

	assert.Equal(t, []string{"one", "few", "many", "other"}, categories)
	assert.Equal(t, pluralExample{category: "one", text: "1 dog"}, examples[0])
	assert.Equal(t, pluralExample{category: "few", text: "2 dogs"}, examples[1])

	assert.Equal(t, "one few many other", formatExactForms(examples))
	assert.Equal(t, "{count, plural, one {...} few {...} many {...} other {...}}", formatExampleICU(examples))
	assert.Contains(t, formatPluralExamples(examples), "one (e.g. 1 dog)\nfew (e.g. 2 dogs)")
}

func TestPluralExamples_ExactFormWins(t *testing.T) {
	examples, ok := pluralExamples("{n, plural, =1 {just one} other {# things}}", "en", "en")
	require.True(t, ok)

	assert.Equal(t, []pluralExample{
		{category: "one", text: "just one"},
		{category: "other", text: "2 things"},
	}, examples)
}

func TestPluralExamples_InvalidInput(t *testing.T) {
	_, ok := pluralExamples("not plural", "en", "de")
	assert.False(t, ok)

	_, ok = pluralExamples("{n, plural, other {#}}", "en", "not a tag!")
	assert.False(t, ok)
}
