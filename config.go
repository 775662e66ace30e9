package scribe

import (
	"encoding/json"

	"github.com/tsawler/scribe/chunk"
	"github.com/tsawler/scribe/internal/lang"
	"github.com/tsawler/scribe/keywords"
	"github.com/tsawler/scribe/ocr"
	"github.com/tsawler/scribe/structure"
)

// ExtractionConfig controls one extraction. The zero value (and nil) mean:
// cache on, quality processing on, structure building on, everything else
// off. Pointer fields enable the feature they configure.
type ExtractionConfig struct {
	// UseCache serves repeated identical extractions from cache.
	// Nil means true.
	UseCache *bool `json:"use_cache,omitempty"`

	// EnableQualityProcessing cleans the extracted text: dehyphenation
	// across line breaks, whitespace normalization. Nil means true.
	EnableQualityProcessing *bool `json:"enable_quality_processing,omitempty"`

	// ForceOCR runs OCR even when the document has native text.
	ForceOCR bool `json:"force_ocr,omitempty"`

	// OCR configures the recognition backend. Nil uses defaults when OCR
	// routing fires.
	OCR *OCRConfig `json:"ocr,omitempty"`

	// Chunking cuts the content into overlapping windows. Nil disables.
	Chunking *chunk.Config `json:"chunking,omitempty"`

	// TokenReduction deletes low-information tokens from the content
	// before chunking. Nil disables.
	TokenReduction *TokenReductionConfig `json:"token_reduction,omitempty"`

	// Keywords extracts ranked keywords. Nil disables.
	Keywords *keywords.Config `json:"keywords,omitempty"`

	// LanguageDetection detects the content language. Nil disables.
	LanguageDetection *LanguageDetectionConfig `json:"language_detection,omitempty"`

	// Structure controls document tree building. Nil means enabled with
	// defaults.
	Structure *StructureConfig `json:"document_structure,omitempty"`

	// Images extracts embedded images. Nil disables.
	Images *ImageExtractionConfig `json:"images,omitempty"`

	// Pages tracks per-page text. Nil disables.
	Pages *PageConfig `json:"pages,omitempty"`

	// HTML holds HTML-specific options.
	HTML *HTMLOptions `json:"html,omitempty"`

	// MaxConcurrentExtractions bounds batch parallelism.
	// 0 means 2 x GOMAXPROCS.
	MaxConcurrentExtractions int `json:"max_concurrent_extractions,omitempty"`
}

// OCRConfig selects and tunes the recognition backend.
type OCRConfig struct {
	// Backend names a registered OCR backend. Empty means "tesseract".
	Backend string `json:"backend,omitempty"`

	// Language is the recognition language passed to the backend,
	// "+"-separated for multiple. Empty means "eng".
	Language string `json:"language,omitempty"`

	// Tesseract carries Tesseract-specific knobs, passed through to the
	// backend opaquely.
	Tesseract *ocr.TesseractConfig `json:"tesseract,omitempty"`

	// Preprocess configures image preprocessing before recognition.
	// Nil uses the preprocessing defaults.
	Preprocess *ocr.PreprocessConfig `json:"preprocessing,omitempty"`
}

// TokenReductionConfig controls low-information token deletion.
type TokenReductionConfig struct {
	// Mode is "none", "moderate", or "aggressive".
	Mode string `json:"mode"`

	// PreserveImportantWords protects capitalized and technical tokens.
	// Nil means true.
	PreserveImportantWords *bool `json:"preserve_important_words,omitempty"`
}

// LanguageDetectionConfig controls content language detection.
type LanguageDetectionConfig struct {
	// MinConfidence is the score a language needs to be reported.
	// 0 means 0.8.
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// DetectMultiple reports every language above the threshold instead
	// of only the strongest.
	DetectMultiple bool `json:"detect_multiple,omitempty"`
}

// StructureConfig controls document tree building.
type StructureConfig struct {
	// Enabled turns structure building on. Nil means true.
	Enabled *bool `json:"enabled,omitempty"`

	// KClusters is the number of font-size clusters used to infer heading
	// levels. 0 means 3.
	KClusters int `json:"k_clusters,omitempty"`

	// OCRCoverageThreshold demotes heading candidates whose OCR confidence
	// falls below it. 0 means 0.5.
	OCRCoverageThreshold float64 `json:"ocr_coverage_threshold,omitempty"`
}

// ImageExtractionConfig controls embedded image extraction.
type ImageExtractionConfig struct {
	// Enabled turns image extraction on.
	Enabled bool `json:"enabled"`

	// OCRImages additionally runs OCR over each extracted image and fills
	// in its OCRText.
	OCRImages bool `json:"ocr_extracted_images,omitempty"`
}

// PageConfig controls per-page text tracking.
type PageConfig struct {
	// Enabled turns page tracking on.
	Enabled bool `json:"enabled"`
}

// HTMLOptions holds HTML-specific extraction options.
type HTMLOptions struct {
	// Sanitize strips scripts and unsafe markup before parsing.
	// Nil means true.
	Sanitize *bool `json:"sanitize,omitempty"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (c *ExtractionConfig) useCache() bool {
	return c == nil || boolOr(c.UseCache, true)
}

func (c *ExtractionConfig) qualityProcessing() bool {
	return c == nil || boolOr(c.EnableQualityProcessing, true)
}

func (c *ExtractionConfig) structureEnabled() bool {
	return c == nil || c.Structure == nil || boolOr(c.Structure.Enabled, true)
}

func (c *ExtractionConfig) sanitizeHTML() bool {
	return c == nil || c.HTML == nil || boolOr(c.HTML.Sanitize, true)
}

func (c *ExtractionConfig) ocrBackend() string {
	if c == nil || c.OCR == nil {
		return ""
	}
	return c.OCR.Backend
}

// ocrBackendConfig builds the opaque JSON document handed to the backend.
// The top-level OCR language fills the Tesseract language when that is unset.
func (c *ExtractionConfig) ocrBackendConfig() json.RawMessage {
	tc := ocr.TesseractConfig{}
	if c != nil && c.OCR != nil {
		if c.OCR.Tesseract != nil {
			tc = *c.OCR.Tesseract
		}
		if tc.Language == "" {
			tc.Language = c.OCR.Language
		}
	}
	if tc.Language == "" {
		tc.Language = "eng"
	}
	raw, err := json.Marshal(tc)
	if err != nil {
		return nil
	}
	return raw
}

func (c *ExtractionConfig) preprocessConfig() ocr.PreprocessConfig {
	if c != nil && c.OCR != nil && c.OCR.Preprocess != nil {
		return *c.OCR.Preprocess
	}
	return ocr.DefaultPreprocessConfig()
}

// validate rejects config values the pipeline would otherwise quietly
// misread, independent of which stages are enabled.
func (c *ExtractionConfig) validate() error {
	if c == nil {
		return nil
	}
	if c.TokenReduction != nil {
		switch c.TokenReduction.Mode {
		case "", "none", "off", string(chunk.ReduceModerate), string(chunk.ReduceAggressive):
		default:
			return NewError(KindValidation, "unknown token reduction mode %q", c.TokenReduction.Mode)
		}
	}
	return nil
}

func (c *ExtractionConfig) reductionMode() chunk.Reduction {
	if c == nil || c.TokenReduction == nil {
		return chunk.ReduceNone
	}
	switch c.TokenReduction.Mode {
	case "", "none", "off":
		return chunk.ReduceNone
	default:
		return chunk.Reduction(c.TokenReduction.Mode)
	}
}

func (c *ExtractionConfig) preserveImportantWords() bool {
	if c == nil || c.TokenReduction == nil {
		return true
	}
	return boolOr(c.TokenReduction.PreserveImportantWords, true)
}

func (c *ExtractionConfig) structureConfig() structure.Config {
	sc := structure.DefaultConfig()
	if c == nil || c.Structure == nil {
		return sc
	}
	if c.Structure.KClusters > 0 {
		sc.KClusters = c.Structure.KClusters
	}
	if c.Structure.OCRCoverageThreshold > 0 {
		sc.OCRCoverageThreshold = c.Structure.OCRCoverageThreshold
	}
	return sc
}

func (c *ExtractionConfig) langConfig() (lang.Config, bool) {
	if c == nil || c.LanguageDetection == nil {
		return lang.Config{}, false
	}
	lc := lang.DefaultConfig()
	if c.LanguageDetection.MinConfidence > 0 {
		lc.MinConfidence = c.LanguageDetection.MinConfidence
	}
	lc.DetectMultiple = c.LanguageDetection.DetectMultiple
	return lc, true
}

// chunkConfig merges the token reduction settings into the chunking config
// so Split reduces with the same parameters the engine reduced the canonical
// content with.
func (c *ExtractionConfig) chunkConfig(langCode string) (chunk.Config, bool) {
	if c == nil || c.Chunking == nil {
		return chunk.Config{}, false
	}
	cc := *c.Chunking
	cc.TokenReduction = c.reductionMode()
	cc.PreserveImportantWords = c.preserveImportantWords()
	if cc.Language == "" {
		cc.Language = langCode
	}
	return cc, true
}

// canonical serializes the config for cache fingerprinting. encoding/json
// emits struct fields in declaration order, so equal configs always produce
// identical bytes.
func (c *ExtractionConfig) canonical() []byte {
	if c == nil {
		c = &ExtractionConfig{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
