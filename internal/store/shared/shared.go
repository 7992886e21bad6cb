// Package shared holds text helpers used by the stores before writing.
package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripControl = transform.Chain(
	norm.NFC,
	transform.RemoveFunc(func(r rune) bool {
		return unicode.IsControl(r) && r != '\n' && r != '\t'
	}),
)

// Line normalizes single-line input: NFC, no control characters,
// runs of whitespace collapsed to one space, trimmed.
func Line(s string) string {
	out, _, err := transform.String(stripControl, s)
	if err != nil {
		out = norm.NFC.String(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Text normalizes multi-line input: NFC, CRLF to LF, no control
// characters other than tab and newline, trailing spaces trimmed per line.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	out, _, err := transform.String(stripControl, s)
	if err != nil {
		out = norm.NFC.String(s)
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
