// Package lang provides stopword tables and lightweight language detection.
// Detection scores languages by stopword density, which is reliable for
// running prose but not for short fragments; callers gate on confidence.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Config controls language detection.
type Config struct {
	// Enabled turns detection on.
	Enabled bool `json:"enabled"`

	// MinConfidence is the score a language needs to be reported.
	MinConfidence float64 `json:"min_confidence"`

	// DetectMultiple reports every language above the threshold instead of
	// only the strongest.
	DetectMultiple bool `json:"detect_multiple"`
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MinConfidence: 0.8,
	}
}

// Natural prose runs roughly one stopword per three tokens. Density is
// normalized against this so clean single-language text scores near 1.
const expectedStopwordDensity = 0.33

var tagByCode = map[string]language.Tag{
	"en": language.English,
	"de": language.German,
	"fr": language.French,
	"es": language.Spanish,
	"it": language.Italian,
	"pt": language.Portuguese,
}

// Detect returns BCP-47 language codes found in the text, strongest first.
// Returns nil when nothing clears the confidence threshold.
func Detect(text string, cfg Config) []string {
	if !cfg.Enabled || text == "" {
		return nil
	}
	tokens := tokenize(text)
	if len(tokens) < 5 {
		return nil
	}

	type scored struct {
		code  string
		score float64
	}
	var candidates []scored
	for code := range stopwordsByCode {
		hits := 0
		words := stopwordsByCode[code]
		for _, t := range tokens {
			if _, ok := words[t]; ok {
				hits++
			}
		}
		score := float64(hits) / float64(len(tokens)) / expectedStopwordDensity
		if score > 1 {
			score = 1
		}
		if score >= cfg.MinConfidence {
			candidates = append(candidates, scored{code: code, score: score})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score > candidates[i].score ||
				(candidates[j].score == candidates[i].score && candidates[j].code < candidates[i].code) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	if !cfg.DetectMultiple {
		candidates = candidates[:1]
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, canonical(c.code))
	}
	return out
}

// canonical maps an internal code to its BCP-47 form.
func canonical(code string) string {
	if tag, ok := tagByCode[code]; ok {
		return tag.String()
	}
	if tag, err := language.Parse(code); err == nil {
		return tag.String()
	}
	return code
}

// Stopwords returns the stopword set for a language code. Accepts BCP-47
// ("en", "en-US") and common ISO 639-2 codes ("eng"); unknown languages fall
// back to English.
func Stopwords(code string) map[string]struct{} {
	norm := normalizeCode(code)
	if words, ok := stopwordsByCode[norm]; ok {
		return words
	}
	return stopwordsByCode["en"]
}

// IsStopword reports whether the word is a stopword in the given language.
func IsStopword(word, code string) bool {
	_, ok := Stopwords(code)[strings.ToLower(word)]
	return ok
}

var iso3ToCode = map[string]string{
	"eng": "en",
	"deu": "de",
	"ger": "de",
	"fra": "fr",
	"fre": "fr",
	"spa": "es",
	"ita": "it",
	"por": "pt",
}

func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if mapped, ok := iso3ToCode[code]; ok {
		return mapped
	}
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	return code
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
