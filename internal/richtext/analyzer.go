package richtext

import (
	"html"
	"regexp"
	"strings"

	"quillhouse/internal/domain/services"
)

// blockBoundary matches closing block tags and line breaks so adjacent
// paragraphs don't glue their words together once tags are stripped.
var blockBoundary = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|pre|tr|td|th)>|<br\s*/?>`)

type analyzer struct {
	strict *Sanitizer
}

// NewAnalyzer creates a content analyzer for rich-text content
func NewAnalyzer() services.ContentAnalyzer {
	return &analyzer{strict: NewStrictSanitizer()}
}

// PlainText strips markup and decodes entities
func (a *analyzer) PlainText(richText string) string {
	spaced := blockBoundary.ReplaceAllStringFunc(richText, func(tag string) string {
		return tag + " "
	})
	return strings.TrimSpace(html.UnescapeString(a.strict.Sanitize(spaced)))
}

// CountWords counts whitespace-separated words of the plain text
func (a *analyzer) CountWords(richText string) int {
	return len(strings.Fields(a.PlainText(richText)))
}
