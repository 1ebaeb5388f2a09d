// Package sanitize cleans user-submitted text and rich HTML before it is
// persisted. It is a defense-in-depth layer built on bluemonday's allow-list
// policies, not a guarantee against every injection vector; the static site
// that renders the stored content applies its own escaping on top.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxTextLen caps free-text fields independently of any schema length
// bound.
const maxTextLen = 1000

var (
	textPolicy = bluemonday.StrictPolicy()
	htmlPolicy = newHTMLPolicy()
)

// newHTMLPolicy builds the rich-text policy: bluemonday's user-generated
// content allow-list, which drops script, iframe, object and embed
// elements, inline event handlers, and javascript: URLs. Relative URLs and
// data-URI images are allowed because submitted content references local
// image paths and carries base64 placeholders until the upload pipeline
// substitutes stored paths.
func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowRelativeURLs(true)
	p.AllowDataURIImages()
	p.AllowAttrs("class").Globally()
	return p
}

// Text strips all markup from a free-text field, decodes the entities the
// sanitizer escaped, trims whitespace, and truncates to the defensive
// length cap.
func Text(s string) string {
	clean := html.UnescapeString(textPolicy.Sanitize(s))
	clean = strings.TrimSpace(clean)
	runes := []rune(clean)
	if len(runes) > maxTextLen {
		clean = string(runes[:maxTextLen])
	}
	return clean
}

// HTML sanitizes a rich-text blob through the allow-list policy.
func HTML(s string) string {
	return strings.TrimSpace(htmlPolicy.Sanitize(s))
}
