package timetable

import (
	"regexp"
	"strings"
)

var (
	reFormatting = regexp.MustCompile("[\u00a0\n\r\t]")
	reSpaces     = regexp.MustCompile(` {2,}`)
)

// Normalize turns non-breaking spaces, newlines and tabs into plain spaces
// and collapses runs of spaces, so every token is single-space separated.
func Normalize(s string) string {
	s = reFormatting.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
