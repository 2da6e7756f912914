package llm

import "strings"

// CleanJSONBlock strips a markdown code fence from around a JSON
// response. Models often wrap JSON in ```json fences even when told
// not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	body = strings.TrimPrefix(body, "json")

	// Drop any other language tag ("javascript", ...) when the first
	// line looks like one.
	if nl := strings.Index(body, "\n"); nl >= 0 {
		tag := body[:nl]
		if len(tag) < 20 && !strings.ContainsAny(tag, " {") {
			body = body[nl+1:]
		}
	}

	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
