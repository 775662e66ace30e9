package keywords

import (
	"math"
	"strings"
	"unicode"
)

// yake implements the YAKE term scoring scheme. Per-term features (casing,
// position, frequency, sentence dispersion, co-occurrence diversity inside
// the sliding window) combine into a weight where lower means more relevant;
// candidate n-gram scores are inverted so callers can rank descending.
func yake(text string, cfg Config, stop map[string]struct{}) []candidate {
	tokens := tokenizeSentences(text, stop)

	type termStats struct {
		freq      int
		upper     int
		positions []int
		sentences map[int]struct{}
		neighbors map[string]struct{}
	}
	stats := make(map[string]*termStats)
	var words []token
	for _, t := range tokens {
		if t.isDelim || t.lower == "" {
			continue
		}
		words = append(words, t)
	}
	if len(words) == 0 {
		return nil
	}

	sentenceCount := words[len(words)-1].sentence + 1
	maxFreq := 0
	for i, w := range words {
		st := stats[w.lower]
		if st == nil {
			st = &termStats{
				sentences: make(map[int]struct{}),
				neighbors: make(map[string]struct{}),
			}
			stats[w.lower] = st
		}
		st.freq++
		if st.freq > maxFreq {
			maxFreq = st.freq
		}
		st.positions = append(st.positions, i)
		st.sentences[w.sentence] = struct{}{}
		if isUpperish(w.text) {
			st.upper++
		}
		for d := 1; d <= cfg.YAKE.WindowSize; d++ {
			if i-d >= 0 {
				st.neighbors[words[i-d].lower] = struct{}{}
			}
			if i+d < len(words) {
				st.neighbors[words[i+d].lower] = struct{}{}
			}
		}
	}

	// Per-term weight, lower is better.
	weight := make(map[string]float64, len(stats))
	for term, st := range stats {
		tf := float64(st.freq)

		// Casing: terms that show up capitalized matter more.
		wCase := float64(st.upper) / (1 + math.Log(tf))

		// Position: earlier first occurrence is better.
		wPos := math.Log(3 + float64(st.positions[0]))

		// Frequency normalized against the most frequent term.
		wFreq := tf / (float64(maxFreq)/2 + 1)

		// Relatedness: many distinct neighbors means a contextual word,
		// not a keyword.
		wRel := 1 + float64(len(st.neighbors))/tf/10

		// Dispersion across sentences.
		wSent := float64(len(st.sentences)) / float64(sentenceCount)

		weight[term] = wPos * wRel / (wCase + 1 + wFreq/wRel + wSent/wRel)
	}

	// Candidate n-grams: contiguous non-stopword runs, bounded by the
	// ngram range. Phrase weight combines member weights; ngram frequency
	// rewards repeated phrases.
	type phraseStats struct {
		count int
		first int
		text  string
	}
	phrases := make(map[string]*phraseStats)
	for i := range words {
		if words[i].isStop {
			continue
		}
		for n := cfg.NgramRange[0]; n <= cfg.NgramRange[1]; n++ {
			if i+n > len(words) {
				break
			}
			valid := true
			for j := i; j < i+n; j++ {
				if words[j].isStop || words[j].sentence != words[i].sentence {
					valid = false
					break
				}
			}
			if !valid {
				break
			}
			var parts []string
			for j := i; j < i+n; j++ {
				parts = append(parts, words[j].lower)
			}
			key := strings.Join(parts, " ")
			ps := phrases[key]
			if ps == nil {
				ps = &phraseStats{first: words[i].offset, text: key}
				phrases[key] = ps
			}
			ps.count++
		}
	}

	var out []candidate
	for key, ps := range phrases {
		prod := 1.0
		sum := 0.0
		for _, term := range strings.Split(key, " ") {
			w := weight[term]
			prod *= w
			sum += w
		}
		score := prod / (float64(ps.count) * (1 + sum))
		out = append(out, candidate{
			text:  ps.text,
			score: 1 / (1 + score),
			first: ps.first,
		})
	}
	return out
}

func isUpperish(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
