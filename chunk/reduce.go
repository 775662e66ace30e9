package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsawler/scribe/internal/lang"
)

// Reduce deletes low-information tokens from text. Moderate drops stopwords
// and collapses whitespace; aggressive additionally drops short tokens.
// With preserveImportant set, capitalized and technical tokens survive even
// when they would otherwise be dropped.
func Reduce(text string, mode Reduction, preserveImportant bool, langCode string) string {
	if mode == "" || mode == ReduceNone {
		return text
	}

	stop := lang.Stopwords(langCode)
	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))

	for _, f := range fields {
		word := strings.ToLower(strings.Trim(f, ".,;:!?()[]{}\"'"))
		if word == "" {
			continue
		}
		if preserveImportant && isImportant(f) {
			kept = append(kept, f)
			continue
		}
		if _, isStop := stop[word]; isStop {
			continue
		}
		if mode == ReduceAggressive && len([]rune(word)) < 3 {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// isImportant reports whether a token looks keyword-bearing: capitalized,
// all-caps, or containing digits (version numbers, identifiers).
func isImportant(token string) bool {
	trimmed := strings.Trim(token, ".,;:!?()[]{}\"'")
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return true
		}
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	return unicode.IsUpper(first)
}
