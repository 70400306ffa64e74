package prompt

import (
	"encoding/json"
	"strings"
)

const codeFence = "```"

// extractJSONObject finds a JSON object in a model response that may be
// wrapped in a markdown fence or surrounded by prose. ok is false when no
// object parses.
func extractJSONObject(text string) (map[string]any, bool) {
	candidates := []string{strings.TrimSpace(text)}

	if fenced, ok := unfence(text); ok {
		candidates = append(candidates, fenced)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	for _, c := range candidates {
		var out map[string]any
		if err := json.Unmarshal([]byte(c), &out); err == nil && out != nil {
			return out, true
		}
	}

	return nil, false
}

func unfence(text string) (string, bool) {
	start := strings.Index(text, codeFence)
	if start < 0 {
		return "", false
	}

	body := text[start+len(codeFence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}

	end := strings.LastIndex(body, codeFence)
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(body[:end]), true
}

func stringField(data map[string]any, name string) (string, bool) {
	v, ok := data[name]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}
