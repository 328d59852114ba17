package application

import (
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL prefixes https:// to a trimmed value that has no http(s) scheme.
// Blank input and input that already carries a scheme are returned untouched.
// The result is not checked for being a well-formed URL.
func NormalizeURL(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || schemePattern.MatchString(value) {
		return raw
	}
	return "https://" + value
}
