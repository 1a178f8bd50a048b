package service

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeText cleans raw text for semantic analysis: literal "\n"
// escape sequences and carriage returns become spaces, everything
// outside [A-Za-z0-9 whitespace] is stripped, whitespace runs collapse
// to a single space, and the result is trimmed and lower-cased. The
// transform is idempotent. It is applied once, upstream of both
// classification and embedding.
func NormalizeText(raw string) string {
	text := strings.ReplaceAll(raw, `\n`, " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = nonAlnumRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}
