package template

import (
	"sort"
	"strings"
	"unicode/utf8"

	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVar
	tokenRaw
	tokenComment
	tokenOpen
	tokenClose
	tokenElse
)

const (
	delimOpen        = "{{"
	delimClose       = "}}"
	rawClose         = "}}}"
	longCommentStart = "!--"
	longCommentEnd   = "--"
	trimMarker       = '~'
	keywordElse      = "else"
)

type token struct {
	kind      tokenKind
	value     string
	line      int
	column    int
	trimLeft  bool
	trimRight bool
}

// standalone reports whether the token may be stripped together with its line.
func (t token) standalone() bool {
	switch t.kind {
	case tokenOpen, tokenClose, tokenElse, tokenComment:
		return true
	default:
		return false
	}
}

type lexer struct {
	src        string
	lineStarts []int
	tokens     []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src, lineStarts: []int{0}}

	for i, r := range src {
		if r == '\n' {
			l.lineStarts = append(l.lineStarts, i+1)
		}
	}

	if err := l.run(); err != nil {
		return nil, err
	}

	stripStandalone(l.tokens)
	applyTrim(l.tokens)

	return l.tokens, nil
}

// position converts a byte offset to a 1-based line and character column.
func (l *lexer) position(offset int) (int, int) {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset })

	return line, utf8.RuneCountInString(l.src[l.lineStarts[line-1]:offset]) + 1
}

func (l *lexer) errorAt(offset int, reason string) error {
	line, column := l.position(offset)

	return &coreerrors.TemplateSyntaxError{Reason: reason, Line: line, Column: column}
}

func (l *lexer) run() error {
	pos := 0

	for pos < len(l.src) {
		start := strings.Index(l.src[pos:], delimOpen)
		if start < 0 {
			l.emitText(pos, l.src[pos:])
			return nil
		}

		start += pos
		if start > pos {
			l.emitText(pos, l.src[pos:start])
		}

		next, err := l.tag(start)
		if err != nil {
			return err
		}

		pos = next
	}

	return nil
}

func (l *lexer) emitText(offset int, text string) {
	line, column := l.position(offset)
	l.tokens = append(l.tokens, token{kind: tokenText, value: text, line: line, column: column})
}

// tag lexes one mustache starting at offset and returns the offset after it.
func (l *lexer) tag(offset int) (int, error) {
	line, column := l.position(offset)
	tok := token{line: line, column: column}

	pos := offset + len(delimOpen)
	if pos < len(l.src) && l.src[pos] == trimMarker {
		tok.trimLeft = true
		pos++
	}

	rest := l.src[pos:]

	switch {
	case strings.HasPrefix(rest, longCommentStart):
		end := strings.Index(rest, longCommentEnd+delimClose)
		trimEnd := strings.Index(rest, longCommentEnd+string(trimMarker)+delimClose)

		if end < 0 && trimEnd < 0 {
			return 0, l.errorAt(offset, "unclosed comment")
		}

		if trimEnd >= 0 && (end < 0 || trimEnd < end) {
			tok.trimRight = true
			end = trimEnd
		}

		tok.kind = tokenComment
		l.tokens = append(l.tokens, tok)

		closeLen := len(longCommentEnd) + len(delimClose)
		if tok.trimRight {
			closeLen++
		}

		return pos + end + closeLen, nil
	case strings.HasPrefix(rest, "{"):
		end := strings.Index(rest, rawClose)
		trimEnd := strings.Index(rest, "}"+string(trimMarker)+delimClose)

		if end < 0 && trimEnd < 0 {
			return 0, l.errorAt(offset, "unclosed raw tag")
		}

		closeLen := len(rawClose)
		if trimEnd >= 0 && (end < 0 || trimEnd < end) {
			tok.trimRight = true
			end = trimEnd
			closeLen++
		}

		tok.kind = tokenRaw
		tok.value = strings.TrimSpace(rest[1:end])
		l.tokens = append(l.tokens, tok)

		return pos + end + closeLen, nil
	}

	end := strings.Index(rest, delimClose)
	if end < 0 {
		return 0, l.errorAt(offset, "unclosed tag")
	}

	body := rest[:end]
	if strings.HasSuffix(body, string(trimMarker)) {
		tok.trimRight = true
		body = body[:len(body)-1]
	}

	next := pos + end + len(delimClose)

	switch {
	case strings.HasPrefix(body, "!"):
		tok.kind = tokenComment
	case strings.HasPrefix(body, "#"):
		tok.kind = tokenOpen
		tok.value = strings.TrimSpace(body[1:])
	case strings.HasPrefix(body, "/"):
		tok.kind = tokenClose
		tok.value = strings.TrimSpace(body[1:])
	case isElse(body):
		tok.kind = tokenElse
		tok.value = strings.TrimSpace(strings.TrimSpace(body)[len(keywordElse):])
	default:
		tok.kind = tokenVar
		tok.value = strings.TrimSpace(body)
	}

	if tok.kind != tokenComment && strings.Contains(body, delimOpen) {
		return 0, l.errorAt(offset, "unclosed tag")
	}

	l.tokens = append(l.tokens, tok)

	return next, nil
}

// isElse matches {{else}} and the chained {{else helper arg}} form.
func isElse(body string) bool {
	fields := strings.Fields(body)
	return len(fields) > 0 && fields[0] == keywordElse
}

// stripStandalone removes the indentation and line break around block and
// comment tags that sit alone on their line. Decisions use the original text
// so that adjacent standalone tags do not affect each other.
func stripStandalone(tokens []token) {
	type cut struct{ start, end int }

	cuts := make(map[int]*cut)
	cutFor := func(i int) *cut {
		if c, ok := cuts[i]; ok {
			return c
		}

		c := &cut{end: len(tokens[i].value)}
		cuts[i] = c

		return c
	}

	for i := range tokens {
		if !tokens[i].standalone() {
			continue
		}

		prevOK, prevIdx := standalonePrev(tokens, i)
		if !prevOK {
			continue
		}

		nextOK, nextIdx := standaloneNext(tokens, i)
		if !nextOK {
			continue
		}

		if prevIdx >= 0 {
			cutFor(prevIdx).end = strings.LastIndexByte(tokens[prevIdx].value, '\n') + 1
		}

		if nextIdx >= 0 {
			text := tokens[nextIdx].value
			if nl := strings.IndexByte(text, '\n'); nl >= 0 {
				cutFor(nextIdx).start = nl + 1
			} else {
				cutFor(nextIdx).start = len(text)
			}
		}
	}

	for i, c := range cuts {
		if c.start >= c.end {
			tokens[i].value = ""
			continue
		}

		tokens[i].value = tokens[i].value[c.start:c.end]
	}
}

// standalonePrev checks that only blanks precede token i on its line. The
// returned index is the text token to strip, or -1 at the start of input.
func standalonePrev(tokens []token, i int) (bool, int) {
	if i == 0 {
		return true, -1
	}

	prev := tokens[i-1]
	if prev.kind != tokenText {
		return false, -1
	}

	tail := prev.value[strings.LastIndexByte(prev.value, '\n')+1:]
	if strings.Trim(tail, " \t") != "" {
		return false, -1
	}

	if !strings.Contains(prev.value, "\n") && i-1 != 0 {
		return false, -1
	}

	return true, i - 1
}

// standaloneNext checks that only blanks and a line break follow token i.
func standaloneNext(tokens []token, i int) (bool, int) {
	if i == len(tokens)-1 {
		return true, -1
	}

	next := tokens[i+1]
	if next.kind != tokenText {
		return false, -1
	}

	nl := strings.IndexByte(next.value, '\n')
	if nl < 0 {
		if i+1 == len(tokens)-1 && strings.Trim(next.value, " \t\r") == "" {
			return true, i + 1
		}

		return false, -1
	}

	if strings.Trim(next.value[:nl], " \t\r") != "" {
		return false, -1
	}

	return true, i + 1
}

func applyTrim(tokens []token) {
	for i, tok := range tokens {
		if tok.kind == tokenText {
			continue
		}

		if tok.trimLeft && i > 0 && tokens[i-1].kind == tokenText {
			tokens[i-1].value = strings.TrimRightFunc(tokens[i-1].value, isSpace)
		}

		if tok.trimRight && i+1 < len(tokens) && tokens[i+1].kind == tokenText {
			tokens[i+1].value = strings.TrimLeftFunc(tokens[i+1].value, isSpace)
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
