package chunk

import (
	"strings"
	"testing"
)

func TestSplitOverlapScenario(t *testing.T) {
	// 1000 characters with no break opportunities: hard cuts at max_chars,
	// cursor advancing by max_chars - max_overlap.
	text := strings.Repeat("a", 1000)
	chunks, err := Split(text, Config{MaxChars: 512, MaxOverlap: 128})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].StartPosition != 0 {
		t.Errorf("chunk 0 start: expected 0, got %d", chunks[0].StartPosition)
	}
	if chunks[1].StartPosition != 384 {
		t.Errorf("chunk 1 start: expected 384, got %d", chunks[1].StartPosition)
	}
	if chunks[2].StartPosition != 768 {
		t.Errorf("chunk 2 start: expected 768, got %d", chunks[2].StartPosition)
	}
	if len(chunks[0].Content) != 512 {
		t.Errorf("chunk 0 length: expected 512, got %d", len(chunks[0].Content))
	}
}

func TestSplitCoversWholeText(t *testing.T) {
	text := strings.Repeat("word and some more text. ", 200)
	chunks, err := Split(text, Config{MaxChars: 300, MaxOverlap: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	covered := 0
	prev := -1
	for i, c := range chunks {
		if c.StartPosition < prev {
			t.Fatalf("chunk %d start %d went backwards from %d", i, c.StartPosition, prev)
		}
		prev = c.StartPosition
		if c.StartPosition > covered {
			t.Fatalf("gap before chunk %d: covered to %d, next starts at %d", i, covered, c.StartPosition)
		}
		if end := c.StartPosition + len(c.Content); end > covered {
			covered = end
		}
	}
	if covered != len(text) {
		t.Errorf("chunks cover %d of %d bytes", covered, len(text))
	}
}

func TestSplitChunksMatchOffsets(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	chunks, err := Split(text, Config{MaxChars: 200, MaxOverlap: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if got := text[c.StartPosition : c.StartPosition+len(c.Content)]; got != c.Content {
			t.Fatalf("chunk %d content does not match its offset", i)
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence is quite a bit longer and continues on."
	chunks, err := Split(text, Config{MaxChars: 30, MaxOverlap: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(chunks[0].Content, "here. ") && !strings.HasSuffix(chunks[0].Content, "here.") {
		t.Errorf("first chunk should end at the sentence boundary, got %q", chunks[0].Content)
	}
}

func TestSplitPrefersWhitespaceOverHardCut(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"
	chunks, err := Split(text, Config{MaxChars: 20, MaxOverlap: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Content, " ") {
			t.Errorf("chunk %d should cut at whitespace, got %q", i, c.Content)
		}
	}
}

func TestSplitShortText(t *testing.T) {
	chunks, err := Split("tiny", Config{MaxChars: 100, MaxOverlap: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != "tiny" {
		t.Fatalf("expected single whole-text chunk, got %+v", chunks)
	}
	if chunks[0].StartPosition != 0 {
		t.Errorf("expected start 0, got %d", chunks[0].StartPosition)
	}
}

func TestSplitEmptyText(t *testing.T) {
	chunks, err := Split("   \n ", DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("whitespace-only text should yield no chunks, got %d", len(chunks))
	}
}

func TestSplitValidation(t *testing.T) {
	cases := []Config{
		{MaxChars: 100, MaxOverlap: 100},
		{MaxChars: 100, MaxOverlap: 150},
		{MaxChars: 100, MaxOverlap: -1},
		{MaxChars: -5},
		{MaxChars: 100, TokenReduction: "extreme"},
		{Preset: "nonexistent"},
	}
	for i, cfg := range cases {
		if _, err := Split("some text", cfg); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, cfg)
		}
	}
}

func TestSplitUTF8Safety(t *testing.T) {
	text := strings.Repeat("héllo wörld çà ", 100)
	chunks, err := Split(text, Config{MaxChars: 37, MaxOverlap: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if !utf8ValidString(c.Content) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c.Content)
		}
	}
}

func utf8ValidString(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}

func TestSplitChunkMetadata(t *testing.T) {
	text := strings.Repeat("some words here. ", 100)
	chunks, err := Split(text, Config{MaxChars: 300, MaxOverlap: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatal("expected multiple chunks")
	}
	if chunks[1].Metadata["chunk_index"] != "1" {
		t.Errorf("expected chunk_index 1, got %q", chunks[1].Metadata["chunk_index"])
	}
	if chunks[0].Metadata["total_chunks"] == "" {
		t.Error("expected total_chunks metadata")
	}
	if chunks[0].TokenCount == 0 {
		t.Error("expected a token count")
	}
}

func TestSplitPreset(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks, err := Split(text, Config{Preset: "rag"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// rag preset is 512/128: same shape as the explicit scenario.
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks from rag preset, got %d", len(chunks))
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	found := false
	for _, n := range names {
		if n == "rag" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected rag preset in %v", names)
	}
}

func TestEmbeddingPresets(t *testing.T) {
	names := ListEmbeddingPresets()
	if len(names) == 0 {
		t.Fatal("expected embedding presets")
	}
	cfg, ok := GetEmbeddingPreset(names[0])
	if !ok || cfg.Model == "" || cfg.Dimensions == 0 {
		t.Errorf("preset %q incomplete: %+v", names[0], cfg)
	}
	if _, ok := GetEmbeddingPreset("nope"); ok {
		t.Error("unknown preset should not resolve")
	}
}
