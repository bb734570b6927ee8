// Package richtext handles the HTML rich-text content of projects and files:
// sanitizing what clients send, measuring it, and converting it for terminals.
package richtext

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes dangerous HTML elements and attributes.
// Safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer allows the formatting an editor produces (paragraphs, headings, lists,
// emphasis, links, tables) and strips scripts, event handlers and javascript: URLs.
func NewSanitizer() *Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "blockquote", "pre", "code")
	return &Sanitizer{policy: policy}
}

// NewStrictSanitizer strips all markup.
func NewStrictSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns the sanitized HTML.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
