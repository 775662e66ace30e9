package scribe

import (
	"regexp"
	"strings"
)

var (
	// A lowercase letter, a hyphen, a line break, a lowercase letter: a word
	// split across lines by justification. Joined back together.
	hyphenBreakRe = regexp.MustCompile(`(\p{Ll})-\n(\p{Ll})`)

	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	extraNewlinesRe = regexp.MustCompile(`\n{3,}`)
	runSpacesRe     = regexp.MustCompile(`[ \t]{2,}`)
)

// cleanContent normalizes extracted text: rejoins words hyphenated across
// line breaks, strips trailing whitespace, and collapses runs of blank lines
// and spaces.
func cleanContent(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = runSpacesRe.ReplaceAllString(text, " ")
	text = extraNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
