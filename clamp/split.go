package clamp

import (
	"strings"

	"github.com/rivo/uniseg"
)

// splitChunks splits text on delim. An empty delim splits into grapheme
// clusters so that combining marks and emoji sequences stay whole.
func splitChunks(text, delim string) []string {
	if delim != "" {
		return strings.Split(text, delim)
	}
	if text == "" {
		return []string{""}
	}
	chunks := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		chunks = append(chunks, g.Str())
	}
	return chunks
}
