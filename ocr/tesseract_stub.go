//go:build !ocr

package ocr

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tsawler/scribe/registry"
)

// TesseractAvailable reports whether Tesseract support was compiled in.
const TesseractAvailable = false

// ErrTesseractNotEnabled is returned by the stub backend. Rebuild with
// -tags ocr (and Tesseract installed) to enable recognition.
var ErrTesseractNotEnabled = errors.New("tesseract: OCR support not enabled; rebuild with -tags ocr")

// TesseractBackend is the stub used without the "ocr" build tag. It stays
// registered so backend lookup succeeds, and reports the missing dependency
// at recognition time.
type TesseractBackend struct{}

// NewTesseractBackend returns the stub backend.
func NewTesseractBackend() *TesseractBackend {
	return &TesseractBackend{}
}

// Recognize always reports the missing dependency.
func (t *TesseractBackend) Recognize(context.Context, []byte, json.RawMessage) (*registry.OCRResult, error) {
	return nil, ErrTesseractNotEnabled
}
