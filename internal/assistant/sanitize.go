package assistant

import (
	"regexp"
	"strings"
)

var (
	fenceMarkers = regexp.MustCompile("```json|```")
	citations    = regexp.MustCompile(`【\d+:\d+†source】`)
)

// Sanitize strips Markdown code-fence markers and inline citation markers
// from an assistant reply so the remainder parses as plain JSON. Running it
// on already-clean text returns the text unchanged.
func Sanitize(text string) string {
	text = fenceMarkers.ReplaceAllString(text, "")
	text = citations.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
