package workspace

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugBase = 60

// newSlug builds a URL slug from a title plus a short random suffix so two
// works with the same title never collide.
func newSlug(title string) string {
	base := slugify(title)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// slugify lowercases letters and digits and collapses everything else into single dashes
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}
	return b.String()
}
