package chunk

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/scribe/model"
)

// Boundary backtracking gives up after this fraction of MaxChars and cuts at
// the hard limit instead.
const backtrackFraction = 5 // one fifth

// Split segments text into overlapping chunks. Token reduction, if
// configured, runs first; chunk start positions are byte offsets into the
// text the chunks were actually cut from. Offsets are monotonically
// non-decreasing. Returns an error for an invalid configuration.
func Split(text string, cfg Config) ([]model.Chunk, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	text = Reduce(text, cfg.TokenReduction, cfg.PreserveImportantWords, cfg.Language)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	budget := cfg.MaxChars / backtrackFraction
	var chunks []model.Chunk

	pos := 0
	for pos < len(text) {
		end := pos + cfg.MaxChars
		if end >= len(text) {
			chunks = append(chunks, newChunk(text[pos:], pos))
			break
		}

		cut := cutPoint(text, pos, end, budget)
		chunks = append(chunks, newChunk(text[pos:cut], pos))

		next := cut - cfg.MaxOverlap
		if next <= pos {
			// Overlap would stall the cursor. Force forward progress.
			next = pos + 1
			for next < len(text) && !utf8.RuneStart(text[next]) {
				next++
			}
		}
		pos = next
	}

	total := strconv.Itoa(len(chunks))
	for i := range chunks {
		chunks[i].Metadata["chunk_index"] = strconv.Itoa(i)
		chunks[i].Metadata["total_chunks"] = total
	}
	return chunks, nil
}

func newChunk(content string, start int) model.Chunk {
	return model.Chunk{
		Content:       content,
		StartPosition: start,
		TokenCount:    len(strings.Fields(content)),
		Metadata:      map[string]string{},
	}
}

// cutPoint picks where to end a chunk that would otherwise cut at end.
// It prefers the closest sentence boundary within the backtrack budget, then
// any whitespace, then the hard limit aligned to a rune start.
func cutPoint(text string, start, end, budget int) int {
	lo := end - budget
	if lo < start+1 {
		lo = start + 1
	}

	// Sentence boundary: a terminator followed by whitespace.
	for i := end; i > lo; i-- {
		if isSentenceEnd(text[i-1]) && (i >= len(text) || isSpace(text[i])) {
			return i
		}
	}
	for i := end; i > lo; i-- {
		if isSpace(text[i-1]) {
			return i
		}
	}

	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
