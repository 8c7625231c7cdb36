package llm

import (
	"fmt"
	"strings"
)

// extractJSON strips markdown code fences and surrounding prose from an LLM
// response so the remaining text can be unmarshalled. Claude has no enforced
// JSON mode, so responses may wrap the payload in ```json fences or lead with
// commentary.
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}

	// Prefer fenced blocks when present
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		// Skip an optional language tag like "json"
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine == "json" || firstLine == "JSON" || firstLine == "" {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = strings.TrimSpace(rest)
	}

	// Trim prose before the first brace/bracket and after the last
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	var closer byte = '}'
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return "", fmt.Errorf("unterminated JSON in response")
	}

	return text[start : end+1], nil
}
