package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/prompt/template"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

const (
	fragmentGroup = "fragment"

	renderStatusOK    = "ok"
	renderStatusError = "error"
)

var blankLines = regexp.MustCompile(`\n(\s*\n)+`)

// Renderer turns a prompt template and a variable tree into prompt text.
type Renderer struct {
	logger *zerolog.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(logger *zerolog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render renders fragments against root first, then renders src against a
// tree where the fragment group holds the rendered texts. Runs of blank lines
// collapse to one and the result is trimmed. Syntax errors are
// *errors.TemplateSyntaxError.
func (r *Renderer) Render(src string, root *Variable) (string, error) {
	out, err := r.render(src, root)
	if err != nil {
		observability.PromptRenders.WithLabelValues(renderStatusError).Inc()
		r.logger.Debug().Err(err).Msg("prompt render failed")

		return "", err
	}

	observability.PromptRenders.WithLabelValues(renderStatusOK).Inc()

	return out, nil
}

func (r *Renderer) render(src string, root *Variable) (string, error) {
	tpl, err := template.Parse(src)
	if err != nil {
		return "", err
	}

	final := root

	if group := root.Prop(fragmentGroup); group != nil {
		rendered := make([]*Variable, 0, len(group.Props))

		for _, fragment := range group.Props {
			text, err := fragment.Value()
			if err != nil {
				return "", fmt.Errorf("fragment %s: %w", fragment.Name, err)
			}

			out, err := template.Render(text, root)
			if err != nil {
				return "", err
			}

			rendered = append(rendered, &Variable{Name: fragment.Name, Description: fragment.Description, value: &out})
		}

		final = root.WithProp(Group(fragmentGroup, rendered...))
	}

	out, err := tpl.Execute(final)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(out, "\n\n")), nil
}
