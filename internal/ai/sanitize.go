package ai

import (
	"regexp"
	"strings"
)

// codeFencePattern matches the Markdown code-fence delimiters some providers
// wrap JSON responses in, with or without the json language tag.
var codeFencePattern = regexp.MustCompile("```json\n?|\n?```")

// StripCodeFence removes Markdown code-fence delimiters from an AI response
// and trims surrounding whitespace. Applying it to already-clean text is a
// no-op, so it is safe to call unconditionally.
func StripCodeFence(s string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(s, ""))
}
