package registry

import (
	"context"
	"encoding/json"

	"github.com/tsawler/scribe/model"
)

// DocumentExtractor converts one document format into a raw extraction. The
// engine normalizes the raw output; extractors never interpret OCR, chunking,
// or caching settings themselves.
type DocumentExtractor interface {
	// Name identifies the extractor in registry listings.
	Name() string

	// SupportedMimeTypes lists the MIME types this extractor claims.
	// A trailing "/*" claims a whole type family (e.g. "image/*").
	SupportedMimeTypes() []string

	// Extract parses the document bytes.
	Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error)
}

// OCRResult is the output of one recognition call.
type OCRResult struct {
	// Text is the recognized text.
	Text string

	// Confidence is the mean recognition confidence in [0,1], 0 if the
	// backend does not report one.
	Confidence float64

	// Tables holds tables detected during recognition, when the backend
	// supports in-OCR table detection.
	Tables []model.RawTable
}

// OCRBackend recognizes text in an image. Backends are registered by name
// and may be stateful (model loaded); they are shared between concurrent
// extractions and must be safe for concurrent Recognize calls.
type OCRBackend interface {
	// Recognize runs OCR on encoded image bytes. The config document carries
	// backend-specific knobs (Tesseract: psm, oem, char whitelist) passed
	// through opaquely by the pipeline.
	Recognize(ctx context.Context, image []byte, config json.RawMessage) (*OCRResult, error)
}

// PostProcessor mutates an extraction result in place after the pipeline has
// assembled it.
type PostProcessor interface {
	Process(ctx context.Context, result *model.ExtractionResult) error
}

// PostProcessorFunc adapts a function to the PostProcessor interface.
type PostProcessorFunc func(ctx context.Context, result *model.ExtractionResult) error

// Process calls f.
func (f PostProcessorFunc) Process(ctx context.Context, result *model.ExtractionResult) error {
	return f(ctx, result)
}

// Validator inspects a finished extraction result. Validators never mutate.
type Validator interface {
	Validate(ctx context.Context, result *model.ExtractionResult) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, result *model.ExtractionResult) error

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, result *model.ExtractionResult) error {
	return f(ctx, result)
}
