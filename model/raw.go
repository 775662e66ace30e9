package model

// BlockKind identifies the kind of a raw content block.
type BlockKind string

// Block kinds emitted by format extractors.
const (
	BlockTitle     BlockKind = "title"
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockListItem  BlockKind = "list_item"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
	BlockCode      BlockKind = "code"
	BlockQuote     BlockKind = "quote"
	BlockFormula   BlockKind = "formula"
	BlockFootnote  BlockKind = "footnote"
	BlockPageBreak BlockKind = "page_break"
)

// Block is one typed content block in a raw extraction, carrying the page and
// position hints the structure builder needs.
type Block struct {
	Kind BlockKind

	// Text is the block's text content.
	Text string

	// Level is the heading level when the format carries explicit levels,
	// 0 when unknown (forcing hierarchy clustering).
	Level int

	// Ordered marks a numbered list for BlockList.
	Ordered bool

	// Language is the code-fence language for BlockCode.
	Language string

	// Page is the 1-indexed page number, 0 if the format has no pages.
	Page int

	// BBox locates the block when the format provides geometry.
	BBox *BoundingBox

	// FontSize is the dominant font size, 0 when unknown. Used by hierarchy
	// clustering for heading candidates without explicit levels.
	FontSize float64

	// Confidence is the OCR coverage confidence in [0,1] for OCR-derived
	// blocks, 0 for native text.
	Confidence float64

	// Layer classifies the block; empty means body content.
	Layer ContentLayer

	// Annotations are inline formatting runs over Text.
	Annotations []TextAnnotation

	// TableIndex references RawExtraction.Tables for BlockTable. -1 if unset.
	TableIndex int

	// ImageIndex references RawExtraction.Images for BlockImage. -1 if unset.
	ImageIndex int
}

// DetectedCell is a table cell located by geometry rather than grid position,
// as produced by OCR table detection and PDF line analysis.
type DetectedCell struct {
	Text       string
	BBox       BoundingBox
	Confidence float64
	IsHeader   bool
}

// RawTable is a table as the format extractor saw it: either an explicit
// row-major grid (spreadsheets, HTML) or a bag of detected cells that the
// table grid model reconciles into bands.
type RawTable struct {
	// Cells is the row-major grid form. Nil when only Detected is set.
	Cells [][]string

	// HeaderRows is the number of leading header rows in Cells.
	HeaderRows int

	// Detected is the geometry form. Nil when Cells is set.
	Detected []DetectedCell

	// Page is the 1-indexed page, 0 if unknown.
	Page int

	// BBox locates the table when geometry is available.
	BBox *BoundingBox
}

// RawImage is an embedded image found by a format extractor.
type RawImage struct {
	Data        []byte
	Format      string
	Page        int
	Description string
}

// RawExtraction is what a DocumentExtractor produces: typed blocks with
// position hints plus the tables and images they reference. The pipeline
// normalizes it into the canonical ExtractionResult.
type RawExtraction struct {
	Blocks   []Block
	Tables   []RawTable
	Images   []RawImage
	Metadata Metadata

	// PageCount is the total number of pages, 0 for unpaged formats.
	PageCount int
}

// ExtractOptions are the per-call options the engine passes to extractors.
// They are a narrow projection of the extraction config: format extractors
// never interpret OCR or chunking settings themselves.
type ExtractOptions struct {
	// ExtractImages asks the extractor to decode and return embedded images.
	ExtractImages bool

	// TrackPages asks the extractor to emit page numbers on blocks.
	TrackPages bool

	// SanitizeHTML strips scripts and unsafe markup before HTML parsing.
	SanitizeHTML bool
}

// HasText reports whether the extraction produced any non-whitespace text,
// used by the engine's OCR fallback trigger.
func (r *RawExtraction) HasText() bool {
	for _, b := range r.Blocks {
		for _, c := range b.Text {
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				return true
			}
		}
	}
	return false
}
