package pipeline

import (
	"encoding/json"
	"strings"
)

// stripCodeFences removes a surrounding markdown code fence from a model
// response. Models frequently wrap JSON in ```json fences even when asked
// not to, so every parse boundary strips before decoding.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line (``` or ```json)
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		return strings.TrimPrefix(text, "```")
	}

	// Drop the closing fence
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

// decodeModelJSON strips fences and unmarshals a model response into v.
func decodeModelJSON(text string, v interface{}) error {
	return json.Unmarshal([]byte(stripCodeFences(text)), v)
}

// clamp10 caps a score to the [0, 10] range.
func clamp10(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
