package legal

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	droppedElements = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	markupComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	paragraphEnds   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|blockquote|pre|table|section|article)>`)
	lineBreaks      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>|</(li|tr)>`)
	anyTag          = regexp.MustCompile(`<[^>]+>`)
)

// isMarkup reports whether text should be stripped as HTML before cleaning.
// Bundle segments carry a "#n" suffix that is ignored.
func isMarkup(sourceID, text string) bool {
	path, _, _ := strings.Cut(sourceID, "#")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	head := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// stripMarkup reduces an HTML judgment to text. Paragraph-level elements
// end with a blank line so the chunker still sees paragraphs.
func stripMarkup(text string) string {
	text = droppedElements.ReplaceAllString(text, "")
	text = markupComments.ReplaceAllString(text, "")
	text = paragraphEnds.ReplaceAllString(text, "\n\n")
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}
