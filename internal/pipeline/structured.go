package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeStructured unmarshals a model response into out, tolerating the
// markdown code fences models wrap JSON in despite instructions.
func DecodeStructured(text string, out any) error {
	cleaned := StripCodeFence(text)
	if cleaned == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	return nil
}

// StripCodeFence removes a surrounding ``` or ```json fence, if any.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
