package services

// ContentAnalyzer handles content analysis operations
type ContentAnalyzer interface {
	// CountWords counts words in rich-text (HTML) content
	CountWords(richText string) int

	// PlainText strips markup from rich-text content
	PlainText(richText string) string
}
