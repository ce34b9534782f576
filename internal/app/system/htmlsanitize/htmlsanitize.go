// Package htmlsanitize strips markup from free-text fields that arrive over
// the devices API. Light names that carry markup are rejected.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every HTML element, drops script/style bodies, and
// returns plain text with entities decoded and surrounding space trimmed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s survives StripTags unchanged apart from
// surrounding space, i.e. it carries no elements for the policy to remove.
func IsPlainText(s string) bool {
	return StripTags(s) == strings.TrimSpace(s)
}
