// Package template renders a logic-less Handlebars subset for LLM prompts.
//
// Supported: {{path}}, {{{path}}}, comments, the with/if/unless/each block
// helpers with {{else}} and chained {{else if x}} branches, this, ../, @root,
// @index, @key, @first, @last and ~ whitespace control. Output is never
// HTML-escaped. Missing data renders as empty text and is falsy; only
// malformed syntax is an error.
package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is a parsed template, safe for concurrent use.
type Template struct {
	nodes []node
}

// Parse compiles src. Syntax errors are *errors.TemplateSyntaxError.
func Parse(src string) (*Template, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	nodes, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	return &Template{nodes: nodes}, nil
}

// Render parses src and executes it against data.
func Render(src string, data Value) (string, error) {
	tpl, err := Parse(src)
	if err != nil {
		return "", err
	}

	return tpl.Execute(data)
}

// Execute renders the template against data. A nil data renders every
// reference as empty.
func (t *Template) Execute(data Value) (string, error) {
	var sb strings.Builder

	ex := &executor{out: &sb}
	if err := ex.run(t.nodes, []frame{{value: data}}); err != nil {
		return "", err
	}

	return sb.String(), nil
}

type eachData struct {
	index int
	key   string
	first bool
	last  bool
}

type frame struct {
	value Value
	data  *eachData
}

type executor struct {
	out *strings.Builder
}

func (e *executor) run(nodes []node, stack []frame) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			e.out.WriteString(n.text)
		case exprNode:
			if err := e.writeValue(resolve(n.path, stack), n.path); err != nil {
				return err
			}
		case *blockNode:
			if err := e.block(n, stack); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *executor) writeValue(v Value, p path) error {
	if v == nil {
		return nil
	}

	text, err := v.Text()
	if err != nil {
		return fmt.Errorf("render %s: %w", p.source, err)
	}

	e.out.WriteString(text)

	return nil
}

func (e *executor) block(b *blockNode, stack []frame) error {
	v := resolve(b.arg, stack)

	truthy, err := isTruthy(v)
	if err != nil {
		return fmt.Errorf("render %s: %w", b.arg.source, err)
	}

	switch b.helper {
	case helperWith:
		if !truthy {
			return e.run(b.inverse, stack)
		}

		return e.run(b.body, push(stack, frame{value: v}))
	case helperIf:
		if truthy {
			return e.run(b.body, stack)
		}

		return e.run(b.inverse, stack)
	case helperUnless:
		if truthy {
			return e.run(b.inverse, stack)
		}

		return e.run(b.body, stack)
	case helperEach:
		var items []Item
		if v != nil {
			items = v.Items()
		}

		if len(items) == 0 {
			return e.run(b.inverse, stack)
		}

		for i, item := range items {
			data := &eachData{index: i, key: item.Key, first: i == 0, last: i == len(items)-1}
			if err := e.run(b.body, push(stack, frame{value: item.Value, data: data})); err != nil {
				return err
			}
		}
	}

	return nil
}

func push(stack []frame, f frame) []frame {
	return append(stack[:len(stack):len(stack)], f)
}

func isTruthy(v Value) (bool, error) {
	if v == nil {
		return false, nil
	}

	return v.Truthy()
}

// resolve finds the value a path points to. Unscoped paths look their first
// segment up from the innermost context outwards.
func resolve(p path, stack []frame) Value {
	if p.data != "" {
		return resolveData(p.data, stack)
	}

	var start Value

	switch {
	case p.root:
		start = stack[0].value
	case p.scoped:
		idx := len(stack) - 1 - p.depth
		if idx < 0 {
			return nil
		}

		start = stack[idx].value
	default:
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].value == nil {
				continue
			}

			if first := stack[i].value.Lookup(p.parts[0]); first != nil {
				return walk(first, p.parts[1:])
			}
		}

		return nil
	}

	return walk(start, p.parts)
}

func walk(v Value, parts []string) Value {
	for _, part := range parts {
		if v == nil {
			return nil
		}

		v = v.Lookup(part)
	}

	return v
}

func resolveData(name string, stack []frame) Value {
	for i := len(stack) - 1; i >= 0; i-- {
		d := stack[i].data
		if d == nil {
			continue
		}

		switch name {
		case "@index":
			return scalar{text: strconv.Itoa(d.index), truthy: d.index != 0}
		case "@key":
			return String(d.key)
		case "@first":
			return scalar{text: strconv.FormatBool(d.first), truthy: d.first}
		case "@last":
			return scalar{text: strconv.FormatBool(d.last), truthy: d.last}
		}
	}

	return nil
}
