package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

type failingValue struct{}

func (failingValue) Lookup(string) Value { return nil }
func (failingValue) Items() []Item { return nil }
func (failingValue) Text() (string, error) { return "", errors.New("boom") }
func (failingValue) Truthy() (bool, error) { return false, errors.New("boom") }

func TestRender(t *testing.T) {
	data := FromMap(map[string]any{
		"a":     "hello",
		"empty": "",
		"flag":  true,
		"zero":  0,
		"user": map[string]any{
			"name": "Ann",
			"tags": []any{"x", "y", "z"},
		},
		"langs": map[string]any{
			"de": map[string]any{"name": "German"},
			"cs": map[string]any{"name": "Czech"},
		},
		"html": "<b>&</b>",
	})

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{name: "plain text", tpl: "no tags here", want: "no tags here"},
		{name: "with this", tpl: "{{#with a}}{{this}}{{/with}}", want: "hello"},
		{name: "with missing", tpl: "{{#with missing}}{{this}}{{/with}}", want: ""},
		{name: "with else", tpl: "{{#with empty}}x{{else}}fallback{{/with}}", want: "fallback"},
		{name: "dotted path", tpl: "{{user.name}}", want: "Ann"},
		{name: "slash path", tpl: "{{user/name}}", want: "Ann"},
		{name: "missing segment", tpl: "[{{user.nope.deeper}}]", want: "[]"},
		{name: "spaces inside tag", tpl: "{{ user.name }}", want: "Ann"},
		{name: "no escaping", tpl: "{{html}}|{{{html}}}", want: "<b>&</b>|<b>&</b>"},
		{name: "if true", tpl: "{{#if flag}}yes{{else}}no{{/if}}", want: "yes"},
		{name: "if zero", tpl: "{{#if zero}}yes{{else}}no{{/if}}", want: "no"},
		{name: "else if taken", tpl: "{{#if zero}}a{{else if flag}}b{{else}}c{{/if}}", want: "b"},
		{name: "else if falls through", tpl: "{{#if zero}}a{{else if empty}}b{{else}}c{{/if}}", want: "c"},
		{name: "else if skipped", tpl: "{{#if flag}}a{{else unless zero}}b{{/if}}", want: "a"},
		{name: "each else with", tpl: "{{#each missing}}x{{else with user}}{{name}}{{/each}}", want: "Ann"},
		{name: "standalone else if lines", tpl: "{{#if zero}}\nA\n{{else if flag}}\nB\n{{/if}}\n", want: "B\n"},
		{name: "unless", tpl: "{{#unless empty}}blank{{/unless}}", want: "blank"},
		{name: "each list", tpl: "{{#each user.tags}}{{@index}}={{this}}{{#unless @last}},{{/unless}}{{/each}}", want: "0=x,1=y,2=z"},
		{name: "each map sorted", tpl: "{{#each langs}}{{@key}}:{{name}} {{/each}}", want: "cs:Czech de:German "},
		{name: "each first", tpl: "{{#each user.tags}}{{#if @first}}[{{this}}]{{/if}}{{/each}}", want: "[x]"},
		{name: "each empty", tpl: "{{#each missing}}x{{else}}none{{/each}}", want: "none"},
		{name: "parent lookup", tpl: "{{#with user}}{{name}} says {{a}}{{/with}}", want: "Ann says hello"},
		{name: "explicit parent", tpl: "{{#with user}}{{../a}}{{/with}}", want: "hello"},
		{name: "scoped this does not walk", tpl: "{{#with user}}[{{this.a}}]{{/with}}", want: "[]"},
		{name: "dot slash", tpl: "{{#with user}}{{./name}}{{/with}}", want: "Ann"},
		{name: "root", tpl: "{{#each user.tags}}{{@root.a}}{{/each}}", want: "hellohellohello"},
		{name: "comment", tpl: "a{{! note }}b{{!-- {{not}} parsed --}}c", want: "abc"},
		{name: "trim both sides", tpl: "a   {{~a~}}   b", want: "ahellob"},
		{name: "trim raw", tpl: "x \n{{~{a}~}}\n y", want: "xhelloy"},
		{name: "standalone block lines", tpl: "line1\n{{#with a}}\n  {{this}}\n{{/with}}\nline2", want: "line1\n  hello\nline2"},
		{name: "standalone comment", tpl: "{{! heading }}\nbody", want: "body"},
		{name: "inline block keeps text", tpl: "a {{#if flag}}b{{/if}} c", want: "a b c"},
		{name: "nested blocks", tpl: "{{#with user}}{{#each tags}}{{#if @last}}{{../name}}:{{this}}{{/if}}{{/each}}{{/with}}", want: "Ann:z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_EmptyData(t *testing.T) {
	got, err := Render("{{#with a}}{{this}}{{/with}}", FromMap(map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = Render("x{{a.b}}y", nil)
	require.NoError(t, err)
	assert.Equal(t, "xy", got)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		tpl    string
		line   int
		column int
	}{
		{name: "unclosed tag", tpl: "hello {{name", line: 1, column: 7},
		{name: "unclosed block", tpl: "a\n  {{#with x}}\nbody", line: 2, column: 3},
		{name: "mismatched close", tpl: "{{#if x}}\n{{/with}}", line: 2, column: 1},
		{name: "unexpected close", tpl: "text {{/if}}", line: 1, column: 6},
		{name: "unknown block helper", tpl: "{{#repeat x}}{{/repeat}}", line: 1, column: 1},
		{name: "unknown inline helper", tpl: "\n\n   {{upper name}}", line: 3, column: 4},
		{name: "else outside block", tpl: "{{else}}", line: 1, column: 1},
		{name: "duplicate else", tpl: "{{#if a}}{{else}}{{else}}{{/if}}", line: 1, column: 18},
		{name: "missing argument", tpl: "{{#with}}{{/with}}", line: 1, column: 1},
		{name: "bad path", tpl: "{{a..b}}", line: 1, column: 1},
		{name: "unknown data variable", tpl: "{{@nope}}", line: 1, column: 1},
		{name: "unclosed comment", tpl: "ok\n{{!-- forever", line: 2, column: 1},
		{name: "unclosed raw", tpl: "{{{raw}}", line: 1, column: 1},
		{name: "else if outside block", tpl: "{{else if a}}", line: 1, column: 1},
		{name: "else if mismatched close", tpl: "{{#if a}}{{else if b}}{{/each}}", line: 1, column: 23},
		{name: "else after else", tpl: "{{#if a}}{{else}}{{else if b}}{{/if}}", line: 1, column: 18},
		{name: "unclosed else if chain", tpl: "x {{#if a}}{{else if b}}", line: 1, column: 3},
		{name: "column counts characters", tpl: "Přeložte {{name", line: 1, column: 10},
		{name: "column after multibyte line", tpl: "日本語\n  čau {{/if}}", line: 2, column: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.tpl)

			var syntaxErr *coreerrors.TemplateSyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.line, syntaxErr.Line, syntaxErr.Reason)
			assert.Equal(t, tt.column, syntaxErr.Column, syntaxErr.Reason)
			assert.ErrorIs(t, err, coreerrors.ErrBadRequest)
		})
	}
}

func TestExecute_PropagatesValueErrors(t *testing.T) {
	data := FromMap(map[string]any{"bad": failingValue{}})

	_, err := Render("{{bad}}", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render bad")

	_, err = Render("{{#if bad}}x{{/if}}", data)
	require.Error(t, err)
}

func TestTemplate_ReusableAcrossData(t *testing.T) {
	tpl, err := Parse("Hi {{name}}!")
	require.NoError(t, err)

	first, err := tpl.Execute(FromMap(map[string]any{"name": "A"}))
	require.NoError(t, err)

	second, err := tpl.Execute(FromMap(map[string]any{"name": "B"}))
	require.NoError(t, err)

	assert.Equal(t, "Hi A!", first)
	assert.Equal(t, "Hi B!", second)
}
