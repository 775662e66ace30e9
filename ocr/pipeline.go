package ocr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsawler/scribe/registry"
)

// DefaultBackend is the backend name used when the config names none.
const DefaultBackend = "tesseract"

// ErrUnknownBackend reports a recognition backend that was never registered.
type ErrUnknownBackend struct {
	Name string
}

func (e *ErrUnknownBackend) Error() string {
	return fmt.Sprintf("unknown OCR backend %q", e.Name)
}

// Pipeline routes images through preprocessing and a named backend looked up
// in the registry. Backends may be stateful shared resources; the pipeline
// never assumes exclusive ownership of one.
type Pipeline struct {
	reg    *registry.Registry
	pre    PreprocessConfig
	logger zerolog.Logger
}

// NewPipeline builds a pipeline over the given registry.
func NewPipeline(reg *registry.Registry, pre PreprocessConfig, logger zerolog.Logger) *Pipeline {
	return &Pipeline{reg: reg, pre: pre, logger: logger}
}

// Run recognizes one image. backendName selects the registered backend
// (DefaultBackend when empty); backendCfg is passed through opaquely. A
// preprocessing failure degrades to recognition on the original bytes. A
// panicking backend is recovered into an error so one bad image cannot take
// down a batch.
func (p *Pipeline) Run(ctx context.Context, imageData []byte, backendName string, backendCfg json.RawMessage) (result *registry.OCRResult, err error) {
	if backendName == "" {
		backendName = DefaultBackend
	}
	backend, ok := p.reg.OCRBackendByName(backendName)
	if !ok {
		return nil, &ErrUnknownBackend{Name: backendName}
	}

	prepared, perr := Preprocess(imageData, p.pre)
	if perr != nil {
		p.logger.Warn().Err(perr).Msg("image preprocessing failed, recognizing original image")
		prepared = imageData
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("ocr backend %q panicked: %v", backendName, r)
		}
	}()

	result, err = backend.Recognize(ctx, prepared, backendCfg)
	if err != nil {
		return nil, err
	}
	return result, nil
}
