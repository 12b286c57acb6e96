// Package normalize cleans raw recognized text and sense-checks it through a
// language-understanding service.
package normalize

import (
	"regexp"
	"strings"
)

var (
	hashRuns   = regexp.MustCompile(`#+`)
	noiseWords = regexp.MustCompile(`(?i)\b(hangup|silence|background noise)\b`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Clean strips structural noise markers from raw recognized text and
// collapses whitespace. Pure function, no I/O.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = hashRuns.ReplaceAllString(text, "")
	text = noiseWords.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
