package model

import "time"

// ExtractionResult is the top-level output of an extraction. It is immutable
// once returned; ownership is exclusive to the caller.
type ExtractionResult struct {
	// Content is the canonical extracted text of the whole document.
	Content string `json:"content"`

	// MimeType is the MIME type the document was extracted as.
	MimeType string `json:"mime_type"`

	// Metadata holds document-level properties (title, author, dates).
	Metadata Metadata `json:"metadata"`

	// Tables holds all tables found in the document, in reading order.
	Tables []Table `json:"tables"`

	// DetectedLanguages holds ISO 639-1 codes, most likely first.
	// Nil when language detection is disabled.
	DetectedLanguages []string `json:"detected_languages,omitempty"`

	// Chunks holds the semantic chunks cut from Content.
	// Nil when chunking is disabled.
	Chunks []Chunk `json:"chunks,omitempty"`

	// Keywords holds ranked keywords/keyphrases.
	// Nil when keyword extraction is disabled.
	Keywords []Keyword `json:"keywords,omitempty"`

	// Images holds images extracted from the document.
	// Nil when image extraction is disabled.
	Images []ExtractedImage `json:"images,omitempty"`

	// Pages holds per-page text. Nil when page tracking is disabled.
	Pages []PageContent `json:"pages,omitempty"`

	// DocumentStructure is the hierarchical node tree.
	// Nil when structure extraction is disabled.
	DocumentStructure *DocumentStructure `json:"document_structure,omitempty"`
}

// Metadata contains document-level information.
type Metadata struct {
	Title        string            `json:"title,omitempty"`
	Author       string            `json:"author,omitempty"`
	Subject      string            `json:"subject,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Creator      string            `json:"creator,omitempty"`
	Producer     string            `json:"producer,omitempty"`
	CreationDate time.Time         `json:"creation_date,omitzero"`
	ModDate      time.Time         `json:"mod_date,omitzero"`
	Language     string            `json:"language,omitempty"`
	Custom       map[string]string `json:"custom,omitempty"`
}

// Chunk is one overlapping window of the canonical document text. Chunks are
// produced fresh per extraction call and never mutated after creation.
type Chunk struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Embedding is the optional embedding vector for this chunk.
	Embedding []float32 `json:"embedding,omitempty"`

	// Metadata carries chunk-level context (section title, page range).
	Metadata map[string]string `json:"metadata,omitempty"`

	// TokenCount is an estimated token count for the chunk.
	TokenCount int `json:"token_count,omitempty"`

	// StartPosition is the byte offset into the canonical document text this
	// chunk was cut from. Non-decreasing across the chunk sequence.
	StartPosition int `json:"start_position"`

	// Confidence is an optional extraction confidence for OCR-derived text.
	Confidence float64 `json:"confidence,omitempty"`
}

// Keyword is a scored keyword or keyphrase.
type Keyword struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ExtractedImage is an image pulled out of a document.
type ExtractedImage struct {
	// Data is the raw encoded image bytes.
	Data []byte `json:"data"`

	// Format is the image encoding (png, jpeg, tiff).
	Format string `json:"format,omitempty"`

	// Page is the 1-indexed page the image appeared on, 0 if unknown.
	Page int `json:"page,omitempty"`

	// Index is the image's ordinal within the document.
	Index int `json:"index"`

	// Description is alt text or a caption when the source format carries one.
	Description string `json:"description,omitempty"`

	// OCRText is the recognized text when the image was routed through OCR.
	OCRText string `json:"ocr_text,omitempty"`
}

// PageContent is the text of a single page.
type PageContent struct {
	// Number is the 1-indexed page number.
	Number int `json:"number"`

	// Content is the page text.
	Content string `json:"content"`
}
