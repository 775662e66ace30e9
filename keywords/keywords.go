package keywords

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/scribe/internal/lang"
	"github.com/tsawler/scribe/model"
)

// Algorithm selects the extraction algorithm.
type Algorithm string

// Available algorithms.
const (
	AlgorithmYAKE Algorithm = "yake"
	AlgorithmRAKE Algorithm = "rake"
)

// YAKEParams are the YAKE-specific knobs.
type YAKEParams struct {
	// WindowSize is the co-occurrence window in words on either side.
	WindowSize int `json:"window_size"`
}

// RAKEParams are the RAKE-specific knobs.
type RAKEParams struct {
	// MinWordLength is the minimum word length; shorter words act as
	// phrase delimiters.
	MinWordLength int `json:"min_word_length"`

	// MaxWordsPerPhrase caps candidate phrase length.
	MaxWordsPerPhrase int `json:"max_words_per_phrase"`
}

// Config controls keyword extraction.
type Config struct {
	// Algorithm picks yake or rake.
	Algorithm Algorithm `json:"algorithm"`

	// MaxKeywords caps the number of results.
	MaxKeywords int `json:"max_keywords"`

	// MinScore filters out weak results.
	MinScore float64 `json:"min_score"`

	// NgramRange bounds candidate phrase length in words.
	// NgramRange[0] >= 1 and NgramRange[1] >= NgramRange[0].
	NgramRange [2]int `json:"ngram_range"`

	// Language selects the stopword list.
	Language string `json:"language,omitempty"`

	// YAKE holds the yake parameters.
	YAKE YAKEParams `json:"yake"`

	// RAKE holds the rake parameters.
	RAKE RAKEParams `json:"rake"`
}

// DefaultConfig returns the keyword extraction defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm:   AlgorithmYAKE,
		MaxKeywords: 10,
		NgramRange:  [2]int{1, 3},
		Language:    "en",
		YAKE:        YAKEParams{WindowSize: 2},
		RAKE:        RAKEParams{MinWordLength: 3, MaxWordsPerPhrase: 3},
	}
}

func (c Config) validate() error {
	switch c.Algorithm {
	case AlgorithmYAKE, AlgorithmRAKE:
	default:
		return fmt.Errorf("unknown keyword algorithm %q", c.Algorithm)
	}
	if c.NgramRange[0] < 1 {
		return fmt.Errorf("ngram_range min must be >= 1, got %d", c.NgramRange[0])
	}
	if c.NgramRange[1] < c.NgramRange[0] {
		return fmt.Errorf("ngram_range max %d below min %d", c.NgramRange[1], c.NgramRange[0])
	}
	if c.MaxKeywords < 0 {
		return fmt.Errorf("max_keywords must not be negative, got %d", c.MaxKeywords)
	}
	return nil
}

// resolve fills zero fields with defaults and validates.
func (c Config) resolve() (Config, error) {
	def := DefaultConfig()
	if c.Algorithm == "" {
		c.Algorithm = def.Algorithm
	}
	if c.MaxKeywords == 0 {
		c.MaxKeywords = def.MaxKeywords
	}
	if c.NgramRange == [2]int{} {
		c.NgramRange = def.NgramRange
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.YAKE.WindowSize == 0 {
		c.YAKE.WindowSize = def.YAKE.WindowSize
	}
	if c.RAKE.MinWordLength == 0 {
		c.RAKE.MinWordLength = def.RAKE.MinWordLength
	}
	if c.RAKE.MaxWordsPerPhrase == 0 {
		c.RAKE.MaxWordsPerPhrase = def.RAKE.MaxWordsPerPhrase
	}
	return c, c.validate()
}

// Extract runs the configured algorithm over the text and returns keywords
// sorted by descending score, ties broken by first occurrence.
func Extract(text string, cfg Config) ([]model.Keyword, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	stop := lang.Stopwords(cfg.Language)

	var scored []candidate
	switch cfg.Algorithm {
	case AlgorithmYAKE:
		scored = yake(text, cfg, stop)
	case AlgorithmRAKE:
		scored = rake(text, cfg, stop)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].first != scored[j].first {
			return scored[i].first < scored[j].first
		}
		return scored[i].text < scored[j].text
	})

	out := make([]model.Keyword, 0, cfg.MaxKeywords)
	for _, c := range scored {
		if c.score < cfg.MinScore {
			continue
		}
		out = append(out, model.Keyword{Text: c.text, Score: c.score})
		if len(out) == cfg.MaxKeywords {
			break
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// candidate is a scored keyphrase with its first occurrence for tie-breaks.
type candidate struct {
	text  string
	score float64
	first int
}

// token is a word with its position in the token stream and sentence index.
type token struct {
	text     string
	lower    string
	sentence int
	offset   int
	isStop   bool
	isDelim  bool
}

// tokenizeSentences splits the text into word tokens tagged with sentence
// boundaries. Punctuation other than intra-word apostrophes and hyphens acts
// as a delimiter token.
func tokenizeSentences(text string, stop map[string]struct{}) []token {
	var tokens []token
	sentence := 0
	var word []rune
	start := 0

	flush := func(end int) {
		if len(word) == 0 {
			return
		}
		w := string(word)
		lower := strings.ToLower(w)
		_, isStop := stop[lower]
		tokens = append(tokens, token{
			text:     w,
			lower:    lower,
			sentence: sentence,
			offset:   start,
			isStop:   isStop,
		})
		word = word[:0]
	}

	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			if len(word) == 0 {
				start = i
			}
			word = append(word, r)
		case r == '.' || r == '!' || r == '?' || r == '\n':
			flush(i)
			tokens = append(tokens, token{isDelim: true, sentence: sentence, offset: i})
			sentence++
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			tokens = append(tokens, token{isDelim: true, sentence: sentence, offset: i})
		}
	}
	flush(len(text))
	return tokens
}
