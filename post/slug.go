package post

import (
	"regexp"
	"strings"
)

var slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercase ASCII letters and
// digits, with every other run of characters collapsed to a single '-'.
func Slugify(title string) string {
	s := slugSeparator.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
