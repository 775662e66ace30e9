package extractors

import (
	"context"
	"strings"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// ImageExtractor handles standalone images. It produces no text of its own;
// the empty extraction triggers the engine's OCR routing, which recognizes
// the original bytes and fills in the content.
type ImageExtractor struct{}

func (e *ImageExtractor) Name() string { return "image" }

func (e *ImageExtractor) SupportedMimeTypes() []string {
	return []string{"image/*"}
}

func (e *ImageExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	raw := &model.RawExtraction{
		Blocks: []model.Block{{
			Kind:       model.BlockImage,
			TableIndex: -1,
			ImageIndex: 0,
		}},
		Images: []model.RawImage{{
			Data:   data,
			Format: imageFormat(data),
		}},
	}
	return raw, nil
}

// imageFormat names the encoding from the magic bytes: "png", "jpeg", ...
func imageFormat(data []byte) string {
	mime := format.Detect(data)
	if f, ok := strings.CutPrefix(mime, "image/"); ok {
		return f
	}
	return ""
}
