package ingest

import (
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// decodeCharset converts a body to UTF-8 according to the charset declared on
// its Content-Type. Unknown or missing charsets fall back to the raw bytes.
func decodeCharset(body []byte, contentType string) string {
	name := charsetName(contentType)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "us-ascii") {
		return string(body)
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return string(body)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// ExtractText strips markup from an HTML email body, leaving the visible
// text. Plain-text bodies pass through with only whitespace cleanup.
func ExtractText(html string) string {
	// Remove script and style tags with their contents
	html = removeTagsWithContent(html, "script")
	html = removeTagsWithContent(html, "style")

	// Block-level tags become line breaks before tags are stripped
	html = strings.ReplaceAll(html, "<br>", "\n")
	html = strings.ReplaceAll(html, "<br/>", "\n")
	html = strings.ReplaceAll(html, "<br />", "\n")
	html = strings.ReplaceAll(html, "</p>", "\n\n")
	html = strings.ReplaceAll(html, "</div>", "\n")

	// Remove all remaining HTML tags
	var result strings.Builder
	inTag := false
	for _, char := range html {
		if char == '<' {
			inTag = true
			continue
		}
		if char == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(char)
		}
	}
	text := result.String()

	// Replace common HTML entities
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")

	// Clean up whitespace
	text = strings.TrimSpace(text)
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return text
}

// removeTagsWithContent removes HTML tags and their content
func removeTagsWithContent(html, tag string) string {
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		start := strings.Index(strings.ToLower(html), openTag)
		if start == -1 {
			break
		}

		end := strings.Index(strings.ToLower(html[start:]), closeTag)
		if end == -1 {
			break
		}
		end += start + len(closeTag)

		html = html[:start] + html[end:]
	}

	return html
}
