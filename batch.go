package scribe

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/scribe/model"
)

// BytesInput is one in-memory document in a batch.
type BytesInput struct {
	// Data is the document bytes.
	Data []byte

	// MimeType is the document's MIME type. Empty means content sniffing.
	MimeType string
}

// BatchItem is the outcome of one document in a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	// Index is the document's position in the input slice.
	Index int `json:"index"`

	// Path is the source path for file batches, "" for byte batches.
	Path string `json:"path,omitempty"`

	// Result is the extraction result when the document succeeded.
	Result *model.ExtractionResult `json:"result,omitempty"`

	// Err is the extraction failure. Failures are isolated per document and
	// never abort the rest of the batch.
	Err error `json:"-"`
}

// BatchExtractFiles extracts several files concurrently. Results come back
// in input order; each document's failure is recorded in its slot without
// affecting the others. Cancelling ctx stops scheduling new documents.
func (e *Engine) BatchExtractFiles(ctx context.Context, paths []string, cfg *ExtractionConfig) []BatchItem {
	items := make([]BatchItem, len(paths))
	for i := range items {
		items[i] = BatchItem{Index: i, Path: paths[i]}
	}
	e.runBatch(ctx, items, cfg, func(ctx context.Context, i int) error {
		result, err := e.ExtractFile(ctx, paths[i], cfg)
		items[i].Result, items[i].Err = result, err
		return err
	})
	return items
}

// BatchExtractBytes extracts several in-memory documents concurrently, with
// the same ordering and isolation guarantees as BatchExtractFiles.
func (e *Engine) BatchExtractBytes(ctx context.Context, inputs []BytesInput, cfg *ExtractionConfig) []BatchItem {
	items := make([]BatchItem, len(inputs))
	for i := range items {
		items[i] = BatchItem{Index: i}
	}
	e.runBatch(ctx, items, cfg, func(ctx context.Context, i int) error {
		result, err := e.ExtractBytes(ctx, inputs[i].Data, inputs[i].MimeType, cfg)
		items[i].Result, items[i].Err = result, err
		return err
	})
	return items
}

// runBatch fans n documents out over a bounded worker group. Each worker
// writes only to its own slot, so no synchronization beyond the group is
// needed.
func (e *Engine) runBatch(ctx context.Context, items []BatchItem, cfg *ExtractionConfig, work func(context.Context, int) error) {
	limit := 0
	if cfg != nil {
		limit = cfg.MaxConcurrentExtractions
	}
	if limit <= 0 {
		limit = 2 * runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range items {
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}
		g.Go(func() error {
			status := "ok"
			if work(ctx, i) != nil {
				status = "error"
			}
			e.metrics.BatchItemsTotal.WithLabelValues(status).Inc()
			return nil
		})
	}
	g.Wait()
}

// BatchExtractFiles extracts several files concurrently using the default
// engine.
func BatchExtractFiles(ctx context.Context, paths []string, cfg *ExtractionConfig) []BatchItem {
	return Default().BatchExtractFiles(ctx, paths, cfg)
}

// BatchExtractBytes extracts several in-memory documents concurrently using
// the default engine.
func BatchExtractBytes(ctx context.Context, inputs []BytesInput, cfg *ExtractionConfig) []BatchItem {
	return Default().BatchExtractBytes(ctx, inputs, cfg)
}
