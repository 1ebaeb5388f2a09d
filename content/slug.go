package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugHyphens  = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe identifier from a title: accents are
// decomposed and stripped, the result is lowercased, characters outside
// [a-z0-9 space hyphen] are removed, whitespace runs collapse to single
// hyphens, repeated hyphens collapse, and leading/trailing hyphens are
// trimmed. Re-deriving from the same title is stable.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ := transform.String(t, title)

	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
