package keywords

import (
	"strings"
)

// rake implements the RAKE scheme: candidate phrases are maximal runs of
// content words between stopwords, short words, and punctuation; each word's
// degree-to-frequency ratio accumulates into the phrase score.
func rake(text string, cfg Config, stop map[string]struct{}) []candidate {
	tokens := tokenizeSentences(text, stop)

	maxWords := cfg.RAKE.MaxWordsPerPhrase
	if cfg.NgramRange[1] < maxWords {
		maxWords = cfg.NgramRange[1]
	}

	// Split into candidate phrases.
	type phrase struct {
		words []string
		first int
	}
	var phrases []phrase
	var current []string
	first := -1

	flush := func() {
		if len(current) == 0 {
			return
		}
		if len(current) >= cfg.NgramRange[0] && len(current) <= maxWords {
			phrases = append(phrases, phrase{words: current, first: first})
		}
		current = nil
		first = -1
	}

	for _, t := range tokens {
		if t.isDelim || t.isStop || len([]rune(t.lower)) < cfg.RAKE.MinWordLength {
			flush()
			continue
		}
		if first < 0 {
			first = t.offset
		}
		current = append(current, t.lower)
	}
	flush()

	if len(phrases) == 0 {
		return nil
	}

	// Word degree and frequency over all candidate phrases.
	freq := make(map[string]int)
	degree := make(map[string]int)
	for _, p := range phrases {
		for _, w := range p.words {
			freq[w]++
			degree[w] += len(p.words)
		}
	}

	// Deduplicate phrases, keeping the earliest occurrence.
	type agg struct {
		score float64
		first int
	}
	byText := make(map[string]*agg)
	for _, p := range phrases {
		var score float64
		for _, w := range p.words {
			score += float64(degree[w]) / float64(freq[w])
		}
		key := strings.Join(p.words, " ")
		if existing, ok := byText[key]; ok {
			if p.first < existing.first {
				existing.first = p.first
			}
			existing.score = score
			continue
		}
		byText[key] = &agg{score: score, first: p.first}
	}

	out := make([]candidate, 0, len(byText))
	for text, a := range byText {
		out = append(out, candidate{text: text, score: a.score, first: a.first})
	}
	return out
}
