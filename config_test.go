package scribe

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/scribe/chunk"
	"github.com/tsawler/scribe/ocr"
)

func TestCanonicalStable(t *testing.T) {
	on := true
	a := &ExtractionConfig{UseCache: &on, ForceOCR: true}
	b := &ExtractionConfig{UseCache: &on, ForceOCR: true}
	if !bytes.Equal(a.canonical(), b.canonical()) {
		t.Error("equal configs produced different canonical bytes")
	}
	c := &ExtractionConfig{ForceOCR: false}
	if bytes.Equal(a.canonical(), c.canonical()) {
		t.Error("different configs produced identical canonical bytes")
	}
}

func TestCanonicalNilConfig(t *testing.T) {
	var cfg *ExtractionConfig
	raw := cfg.canonical()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("nil config canonical form is not JSON: %v", err)
	}
}

func TestDefaultsOnNilConfig(t *testing.T) {
	var cfg *ExtractionConfig
	if !cfg.useCache() {
		t.Error("useCache() = false on nil config, want true")
	}
	if !cfg.qualityProcessing() {
		t.Error("qualityProcessing() = false on nil config, want true")
	}
	if !cfg.structureEnabled() {
		t.Error("structureEnabled() = false on nil config, want true")
	}
	if !cfg.sanitizeHTML() {
		t.Error("sanitizeHTML() = false on nil config, want true")
	}
	if got := cfg.reductionMode(); got != chunk.ReduceNone {
		t.Errorf("reductionMode() = %q on nil config, want none", got)
	}
}

func TestValidateRejectsUnknownReductionMode(t *testing.T) {
	for _, mode := range []string{"", "none", "off", "moderate", "aggressive"} {
		cfg := &ExtractionConfig{TokenReduction: &TokenReductionConfig{Mode: mode}}
		if err := cfg.validate(); err != nil {
			t.Errorf("validate rejected mode %q: %v", mode, err)
		}
	}
	cfg := &ExtractionConfig{TokenReduction: &TokenReductionConfig{Mode: "extreme"}}
	if err := cfg.validate(); !IsKind(err, KindValidation) {
		t.Fatalf("err = %v, want kind %s", err, KindValidation)
	}
}

func TestReductionModeMapping(t *testing.T) {
	tests := []struct {
		mode string
		want chunk.Reduction
	}{
		{"", chunk.ReduceNone},
		{"none", chunk.ReduceNone},
		{"off", chunk.ReduceNone},
		{"moderate", chunk.ReduceModerate},
		{"aggressive", chunk.ReduceAggressive},
	}
	for _, tt := range tests {
		cfg := &ExtractionConfig{TokenReduction: &TokenReductionConfig{Mode: tt.mode}}
		if got := cfg.reductionMode(); got != tt.want {
			t.Errorf("reductionMode(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestOCRBackendConfigMergesLanguage(t *testing.T) {
	psm := 6
	cfg := &ExtractionConfig{OCR: &OCRConfig{
		Language:  "deu",
		Tesseract: &ocr.TesseractConfig{PSM: &psm},
	}}
	var tc ocr.TesseractConfig
	if err := json.Unmarshal(cfg.ocrBackendConfig(), &tc); err != nil {
		t.Fatal(err)
	}
	if tc.Language != "deu" {
		t.Errorf("Language = %q, want deu (lifted from the OCR config)", tc.Language)
	}
	if tc.PSM == nil || *tc.PSM != 6 {
		t.Errorf("PSM = %v, want 6", tc.PSM)
	}
}

func TestOCRBackendConfigDefaultLanguage(t *testing.T) {
	var cfg *ExtractionConfig
	var tc ocr.TesseractConfig
	if err := json.Unmarshal(cfg.ocrBackendConfig(), &tc); err != nil {
		t.Fatal(err)
	}
	if tc.Language != "eng" {
		t.Errorf("Language = %q, want eng default", tc.Language)
	}
}

func TestChunkConfigCarriesReduction(t *testing.T) {
	cfg := &ExtractionConfig{
		Chunking:       &chunk.Config{MaxChars: 500, MaxOverlap: 50},
		TokenReduction: &TokenReductionConfig{Mode: "moderate"},
	}
	cc, enabled := cfg.chunkConfig("en")
	if !enabled {
		t.Fatal("chunkConfig disabled with Chunking set")
	}
	if cc.TokenReduction != chunk.ReduceModerate {
		t.Errorf("TokenReduction = %q, want moderate", cc.TokenReduction)
	}
	if cc.Language != "en" {
		t.Errorf("Language = %q, want en", cc.Language)
	}
	if !cc.PreserveImportantWords {
		t.Error("PreserveImportantWords should default true")
	}
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.json")
	body := `{"force_ocr": true, "use_cache": false, "ocr": {"language": "deu"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.ForceOCR {
		t.Error("ForceOCR not loaded")
	}
	if cfg.useCache() {
		t.Error("use_cache false not loaded")
	}
	if cfg.OCR == nil || cfg.OCR.Language != "deu" {
		t.Errorf("OCR = %+v, want language deu", cfg.OCR)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.yaml")
	body := "force_ocr: true\nchunking:\n  max_chars: 800\n  max_overlap: 100\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.ForceOCR {
		t.Error("ForceOCR not loaded from yaml")
	}
	if cfg.Chunking == nil || cfg.Chunking.MaxChars != 800 || cfg.Chunking.MaxOverlap != 100 {
		t.Errorf("Chunking = %+v, want {800 100}", cfg.Chunking)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scribe.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !IsKind(err, KindSerialization) {
		t.Fatalf("err = %v, want kind %s", err, KindSerialization)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if !IsKind(err, KindIO) {
		t.Fatalf("err = %v, want kind %s", err, KindIO)
	}
}

func TestDiscoverConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "scribe.json"), []byte(`{"force_ocr": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := discoverConfigFrom(nested)
	if err != nil {
		t.Fatalf("discoverConfigFrom: %v", err)
	}
	if cfg == nil || !cfg.ForceOCR {
		t.Errorf("cfg = %+v, want discovered config with ForceOCR", cfg)
	}
}

func TestDiscoverConfigNone(t *testing.T) {
	cfg, err := discoverConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("discoverConfigFrom: %v", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %+v, want nil when no config file exists", cfg)
	}
}
