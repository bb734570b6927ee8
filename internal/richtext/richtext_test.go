package richtext

import (
	"strings"
	"testing"
)

func TestSanitizer_StripsScripts(t *testing.T) {
	s := NewSanitizer()
	got := s.Sanitize(`<p onclick="steal()">Hello <strong>world</strong></p><script>alert(1)</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Errorf("dangerous markup survived: %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Errorf("formatting lost: %q", got)
	}
}

func TestAnalyzer_CountWords(t *testing.T) {
	a := NewAnalyzer()
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"plain", "one two three", 3},
		{"paragraphs do not merge", "<p>end</p><p>start</p>", 2},
		{"nested formatting", "<h1>Chapter <em>One</em></h1><p>It was   dark.</p>", 5},
		{"entities", "<p>fish &amp; chips</p>", 3},
		{"line breaks", "first<br>second<br/>third", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.CountWords(tt.input); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnalyzer_PlainText(t *testing.T) {
	a := NewAnalyzer()
	if got := a.PlainText("<p>fish &amp; chips</p>"); got != "fish & chips" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestFromPlainText(t *testing.T) {
	got := FromPlainText("first line\nsecond <line>\n\n\nnext para\n")
	want := "<p>first line<br>second &lt;line&gt;</p><p>next para</p>"
	if got != want {
		t.Errorf("FromPlainText() = %q, want %q", got, want)
	}
}

func TestConverter_ToMarkdown(t *testing.T) {
	c := NewConverter()
	got, err := c.ToMarkdown("<h1>Title</h1><p>Some <strong>bold</strong> text</p><script>x()</script>")
	if err != nil {
		t.Fatalf("ToMarkdown() error = %v", err)
	}
	if !strings.Contains(got, "# Title") || !strings.Contains(got, "**bold**") {
		t.Errorf("unexpected markdown: %q", got)
	}
	if strings.Contains(got, "x()") {
		t.Errorf("script content leaked: %q", got)
	}
}
