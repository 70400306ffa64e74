package template

import (
	"fmt"
	"strings"

	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

type blockHelper string

const (
	helperWith   blockHelper = "with"
	helperIf     blockHelper = "if"
	helperUnless blockHelper = "unless"
	helperEach   blockHelper = "each"
)

const (
	keywordThis = "this"
	keywordRoot = "@root"
	dataPrefix  = "@"
	parentStep  = "../"
)

var dataVariables = map[string]bool{
	"@index": true,
	"@key":   true,
	"@first": true,
	"@last":  true,
}

type node interface {
	isNode()
}

type textNode struct {
	text string
}

type exprNode struct {
	path path
}

type blockNode struct {
	helper  blockHelper
	arg     path
	body    []node
	inverse []node
}

func (textNode) isNode() {}
func (exprNode) isNode() {}
func (*blockNode) isNode() {}

// path is a parsed variable reference.
type path struct {
	source string
	// data holds the @-variable name when the path is one.
	data string
	root bool
	// depth counts ../ steps.
	depth int
	// scoped paths resolve only against their starting context.
	scoped bool
	parts  []string
}

type openBlock struct {
	tok    token
	node   *blockNode
	inElse bool
	// chained blocks come from {{else helper arg}} and close with their parent.
	chained bool
}

type parser struct {
	stack []*openBlock
	root  []node
}

func parse(tokens []token) ([]node, error) {
	p := &parser{}

	for _, tok := range tokens {
		if err := p.consume(tok); err != nil {
			return nil, err
		}
	}

	if len(p.stack) > 0 {
		open := p.stack[len(p.stack)-p.chainDepth()]
		return nil, syntaxError(open.tok, fmt.Sprintf("unclosed block {{#%s}}", open.node.helper))
	}

	return p.root, nil
}

func (p *parser) appendNode(n node) {
	if len(p.stack) == 0 {
		p.root = append(p.root, n)
		return
	}

	top := p.stack[len(p.stack)-1]
	if top.inElse {
		top.node.inverse = append(top.node.inverse, n)
		return
	}

	top.node.body = append(top.node.body, n)
}

func (p *parser) consume(tok token) error {
	switch tok.kind {
	case tokenText:
		if tok.value != "" {
			p.appendNode(textNode{text: tok.value})
		}
	case tokenComment:
	case tokenVar, tokenRaw:
		if strings.ContainsAny(tok.value, " \t\r\n") {
			return syntaxError(tok, fmt.Sprintf("unknown helper %q", strings.Fields(tok.value)[0]))
		}

		pth, err := parsePath(tok, tok.value)
		if err != nil {
			return err
		}

		p.appendNode(exprNode{path: pth})
	case tokenOpen:
		return p.open(tok, false)
	case tokenElse:
		if len(p.stack) == 0 {
			return syntaxError(tok, "{{else}} outside of a block")
		}

		top := p.stack[len(p.stack)-1]
		if top.inElse {
			return syntaxError(tok, fmt.Sprintf("duplicate {{else}} in {{#%s}}", top.node.helper))
		}

		top.inElse = true

		if tok.value != "" {
			return p.open(tok, true)
		}
	case tokenClose:
		return p.close(tok)
	}

	return nil
}

func (p *parser) open(tok token, chained bool) error {
	fields := strings.Fields(tok.value)
	if len(fields) == 0 {
		return syntaxError(tok, "missing block helper")
	}

	helper := blockHelper(fields[0])

	switch helper {
	case helperWith, helperIf, helperUnless, helperEach:
	default:
		return syntaxError(tok, fmt.Sprintf("unknown helper %q", fields[0]))
	}

	if len(fields) != 2 {
		return syntaxError(tok, fmt.Sprintf("{{#%s}} expects exactly one argument", helper))
	}

	arg, err := parsePath(tok, fields[1])
	if err != nil {
		return err
	}

	block := &blockNode{helper: helper, arg: arg}
	p.appendNode(block)
	p.stack = append(p.stack, &openBlock{tok: tok, node: block, chained: chained})

	return nil
}

func (p *parser) close(tok token) error {
	if len(p.stack) == 0 {
		return syntaxError(tok, fmt.Sprintf("unexpected {{/%s}}", tok.value))
	}

	depth := p.chainDepth()
	head := p.stack[len(p.stack)-depth]
	if blockHelper(tok.value) != head.node.helper {
		return syntaxError(tok, fmt.Sprintf("{{#%s}} doesn't match {{/%s}}", head.node.helper, tok.value))
	}

	p.stack = p.stack[:len(p.stack)-depth]

	return nil
}

// chainDepth counts the top block plus the chained blocks it was opened from.
func (p *parser) chainDepth() int {
	depth := 1
	for p.stack[len(p.stack)-depth].chained {
		depth++
	}

	return depth
}

func parsePath(tok token, src string) (path, error) {
	pth := path{source: src}
	rest := src

	switch {
	case dataVariables[src]:
		pth.data = src
		return pth, nil
	case rest == keywordRoot:
		pth.root = true
		return pth, nil
	case strings.HasPrefix(rest, keywordRoot+".") || strings.HasPrefix(rest, keywordRoot+"/"):
		pth.root = true
		rest = rest[len(keywordRoot)+1:]
	case strings.HasPrefix(rest, dataPrefix):
		return path{}, syntaxError(tok, fmt.Sprintf("unknown data variable %q", src))
	}

	for strings.HasPrefix(rest, parentStep) {
		pth.depth++
		pth.scoped = true
		rest = rest[len(parentStep):]
	}

	switch {
	case rest == keywordThis || rest == ".":
		pth.scoped = true
		return pth, nil
	case strings.HasPrefix(rest, keywordThis+".") || strings.HasPrefix(rest, keywordThis+"/"):
		pth.scoped = true
		rest = rest[len(keywordThis)+1:]
	case strings.HasPrefix(rest, "./"):
		pth.scoped = true
		rest = rest[2:]
	}

	if pth.root {
		pth.scoped = true
	}

	if rest == "" {
		if pth.depth > 0 {
			return pth, nil
		}

		return path{}, syntaxError(tok, fmt.Sprintf("invalid path %q", src))
	}

	for _, part := range strings.FieldsFunc(rest, func(r rune) bool { return r == '.' || r == '/' }) {
		if strings.ContainsAny(part, "{}()=\"'@") {
			return path{}, syntaxError(tok, fmt.Sprintf("invalid path %q", src))
		}

		pth.parts = append(pth.parts, part)
	}

	if len(pth.parts) == 0 || strings.Contains(rest, "..") || strings.HasSuffix(rest, ".") || strings.HasPrefix(rest, ".") {
		return path{}, syntaxError(tok, fmt.Sprintf("invalid path %q", src))
	}

	return pth, nil
}

func syntaxError(tok token, reason string) error {
	return &coreerrors.TemplateSyntaxError{Reason: reason, Line: tok.line, Column: tok.column}
}
