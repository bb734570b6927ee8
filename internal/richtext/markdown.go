package richtext

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Converter turns sanitized rich text into markdown for terminal display.
type Converter struct {
	sanitizer *Sanitizer
	converter *md.Converter
}

// NewConverter creates a rich-text to markdown converter.
func NewConverter() *Converter {
	return &Converter{
		sanitizer: NewSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

// ToMarkdown sanitizes then converts HTML to markdown.
func (c *Converter) ToMarkdown(richText string) (string, error) {
	out, err := c.converter.ConvertString(c.sanitizer.Sanitize(richText))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return out, nil
}

// FromPlainText wraps plain text paragraphs (separated by blank lines) in <p> tags.
func FromPlainText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
