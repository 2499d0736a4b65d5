package protocol

import (
	"regexp"
	"strings"
)

var lineBreaks = regexp.MustCompile(`(\r?\n)+`)

// Verbatim renders captured output for the main output surface, preserving
// internal line breaks.
func Verbatim(s string) string {
	return s
}

// Flatten renders captured output for single-line surfaces such as popups:
// runs of line breaks collapse to single spaces and the result is trimmed.
func Flatten(s string) string {
	return strings.TrimSpace(lineBreaks.ReplaceAllString(s, " "))
}
