//go:build ocr

package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/registry"
)

// TesseractAvailable reports whether Tesseract support was compiled in.
const TesseractAvailable = true

// TesseractBackend recognizes text through the system Tesseract engine.
// Safe for concurrent use: each call owns its own gosseract client.
type TesseractBackend struct{}

// NewTesseractBackend returns the Tesseract recognition backend.
func NewTesseractBackend() *TesseractBackend {
	return &TesseractBackend{}
}

// Recognize runs Tesseract over the image.
func (t *TesseractBackend) Recognize(ctx context.Context, imageData []byte, rawCfg json.RawMessage) (*registry.OCRResult, error) {
	var cfg TesseractConfig
	if len(rawCfg) > 0 {
		if err := json.Unmarshal(rawCfg, &cfg); err != nil {
			return nil, fmt.Errorf("decode tesseract config: %w", err)
		}
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.TableMinConfidence == 0 {
		cfg.TableMinConfidence = 0.5
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(cfg.Language, "+")...); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if cfg.PSM != nil {
		if err := client.SetPageSegMode(gosseract.PageSegMode(*cfg.PSM)); err != nil {
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if cfg.OEM != nil {
		if err := client.SetVariable("tessedit_ocr_engine_mode", strconv.Itoa(*cfg.OEM)); err != nil {
			return nil, fmt.Errorf("set engine mode: %w", err)
		}
	}
	if cfg.CharWhitelist != "" {
		if err := client.SetWhitelist(cfg.CharWhitelist); err != nil {
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	result := &registry.OCRResult{Text: strings.TrimSpace(text)}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		result.Confidence = sum / float64(len(boxes)) / 100

		if cfg.EnableTableDetection {
			if table := detectTable(boxes, cfg.TableMinConfidence); table != nil {
				result.Tables = []model.RawTable{*table}
			}
		}
	}
	return result, nil
}

// detectTable converts confident word boxes into detected cells for band
// reconciliation downstream. Word Y coordinates are flipped so the cells use
// bottom-left origin page coordinates.
func detectTable(boxes []gosseract.BoundingBox, minConfidence float64) *model.RawTable {
	maxY := 0
	for _, b := range boxes {
		if b.Box.Max.Y > maxY {
			maxY = b.Box.Max.Y
		}
	}

	var cells []model.DetectedCell
	for _, b := range boxes {
		if b.Confidence/100 < minConfidence {
			continue
		}
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		cells = append(cells, model.DetectedCell{
			Text:       word,
			Confidence: b.Confidence / 100,
			BBox: model.BoundingBox{
				X:      float64(b.Box.Min.X),
				Y:      float64(maxY - b.Box.Max.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
		})
	}
	if len(cells) < 4 {
		return nil
	}
	return &model.RawTable{Detected: cells}
}
