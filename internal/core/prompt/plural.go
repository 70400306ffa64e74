package prompt

import (
	"strconv"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

const (
	pluralKeyword   = "plural"
	pluralOther     = "other"
	exactFormPrefix = "="
	numberSign      = "#"
)

// CLDR category order.
var pluralCategories = []struct {
	name string
	form plural.Form
}{
	{"zero", plural.Zero},
	{"one", plural.One},
	{"two", plural.Two},
	{"few", plural.Few},
	{"many", plural.Many},
	{pluralOther, plural.Other},
}

type sampleNumber struct {
	text string
	// i, v, f follow the CLDR operand naming.
	i, v, f int
}

// Candidate examples, smallest first; zero and a fraction only when nothing else fits.
var sampleNumbers = func() []sampleNumber {
	out := make([]sampleNumber, 0, 203)
	for n := 1; n <= 200; n++ {
		out = append(out, sampleNumber{text: strconv.Itoa(n), i: n})
	}

	return append(out,
		sampleNumber{text: "1000000", i: 1000000},
		sampleNumber{text: "0", i: 0},
		sampleNumber{text: "0.5", i: 0, v: 1, f: 5},
	)
}()

func (n sampleNumber) category(tag language.Tag) string {
	form := plural.Cardinal.MatchPlural(tag, n.i, n.v, n.v, n.f, n.f)
	for _, c := range pluralCategories {
		if c.form == form {
			return c.name
		}
	}

	return pluralOther
}

// pluralExample is a target category with the source text rendered for one
// of its sample numbers.
type pluralExample struct {
	category string
	text     string
}

// icuPlural is a parsed "{param, plural, form {text} ...}" message.
type icuPlural struct {
	param string
	forms map[string]string
}

// parseICUPlural parses a top-level ICU plural. Nested arguments inside
// forms are kept verbatim.
func parseICUPlural(src string) (icuPlural, bool) {
	src = strings.TrimSpace(src)
	if !strings.HasPrefix(src, "{") || !strings.HasSuffix(src, "}") {
		return icuPlural{}, false
	}

	inner := src[1 : len(src)-1]

	parts := strings.SplitN(inner, ",", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[1]) != pluralKeyword {
		return icuPlural{}, false
	}

	result := icuPlural{param: strings.TrimSpace(parts[0]), forms: make(map[string]string)}
	rest := parts[2]

	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}

		open := strings.IndexByte(rest, '{')
		if open <= 0 {
			return icuPlural{}, false
		}

		selector := strings.TrimSpace(rest[:open])
		if strings.HasPrefix(selector, "offset:") {
			fields := strings.Fields(selector)
			selector = fields[len(fields)-1]
		}

		end := matchingBrace(rest, open)
		if end < 0 {
			return icuPlural{}, false
		}

		result.forms[selector] = rest[open+1 : end]
		rest = rest[end+1:]
	}

	if _, ok := result.forms[pluralOther]; !ok {
		return icuPlural{}, false
	}

	return result, true
}

func matchingBrace(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// formFor picks the source form for a number: exact match, then the source
// language category, then other.
func (p icuPlural) formFor(n sampleNumber, source language.Tag) string {
	if text, ok := p.forms[exactFormPrefix+n.text]; ok {
		return text
	}

	if text, ok := p.forms[n.category(source)]; ok {
		return text
	}

	return p.forms[pluralOther]
}

// pluralExamples renders one example per target language category, in CLDR
// order. ok is false when the source is not an ICU plural or a tag is unknown.
func pluralExamples(sourceText, sourceTag, targetTag string) ([]pluralExample, bool) {
	parsed, ok := parseICUPlural(sourceText)
	if !ok {
		return nil, false
	}

	source, err := language.Parse(sourceTag)
	if err != nil {
		return nil, false
	}

	target, err := language.Parse(targetTag)
	if err != nil {
		return nil, false
	}

	samples := make(map[string]sampleNumber)

	for _, n := range sampleNumbers {
		category := n.category(target)
		if _, seen := samples[category]; !seen {
			samples[category] = n
		}
	}

	var examples []pluralExample

	for _, c := range pluralCategories {
		n, ok := samples[c.name]
		if !ok {
			continue
		}

		text := strings.ReplaceAll(parsed.formFor(n, source), numberSign, n.text)
		examples = append(examples, pluralExample{category: c.name, text: text})
	}

	return examples, true
}

func formatPluralExamples(examples []pluralExample) string {
	lines := make([]string, len(examples))
	for i, e := range examples {
		lines[i] = e.category + " (e.g. " + e.text + ")"
	}

	return strings.Join(lines, "\n")
}

func formatExactForms(examples []pluralExample) string {
	names := make([]string, len(examples))
	for i, e := range examples {
		names[i] = e.category
	}

	return strings.Join(names, " ")
}

func formatExampleICU(examples []pluralExample) string {
	forms := make([]string, len(examples))
	for i, e := range examples {
		forms[i] = e.category + " {...}"
	}

	return "{count, plural, " + strings.Join(forms, " ") + "}"
}
