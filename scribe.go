// Package scribe provides a multi-format document extraction engine: text,
// tables, metadata, and images from PDF, Office, HTML, markup, and image
// files, with optional OCR, chunking, and keyword extraction.
//
// Basic usage:
//
//	result, err := scribe.ExtractFile(ctx, "report.pdf", nil)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Content)
//
// With configuration:
//
//	cfg := &scribe.ExtractionConfig{
//	    ForceOCR: true,
//	    Chunking: &chunk.Config{MaxChars: 2000, MaxOverlap: 200},
//	}
//	result, err := scribe.ExtractBytes(ctx, data, "application/pdf", cfg)
//
// For isolated state (own cache, own plugin registry), create an Engine:
//
//	eng := scribe.New(scribe.WithCacheSize(256))
//	result, err := eng.ExtractBytes(ctx, data, "text/html", nil)
package scribe

import (
	"context"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tsawler/scribe/cache"
	"github.com/tsawler/scribe/extractors"
	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/internal/metrics"
	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/ocr"
	"github.com/tsawler/scribe/registry"
)

// Engine ties the pieces together: format dispatch through the registry, the
// extraction pipeline, the result cache, and instrumentation. An Engine is
// safe for concurrent use.
type Engine struct {
	reg     *registry.Registry
	cache   *cache.Cache
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

type engineOptions struct {
	logger     zerolog.Logger
	cacheSize  int
	cacheStore cache.Store
	registerer prometheus.Registerer
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// WithCacheSize caps the in-memory result cache entry count.
func WithCacheSize(n int) Option {
	return func(o *engineOptions) { o.cacheSize = n }
}

// WithCacheStore adds a persistent second-level cache, typically a
// *cache.SQLiteStore. The engine owns the store and closes it on Close.
func WithCacheStore(s cache.Store) Option {
	return func(o *engineOptions) { o.cacheStore = s }
}

// WithMetrics registers the engine's Prometheus collectors on reg instead of
// keeping them unregistered.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *engineOptions) { o.registerer = reg }
}

// New creates an Engine with the builtin format extractors and the Tesseract
// OCR backend registered.
func New(opts ...Option) *Engine {
	o := engineOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	reg := registry.New()
	for _, ext := range extractors.Builtin() {
		reg.RegisterBuiltin(ext)
	}
	reg.RegisterOCRBackend(ocr.DefaultBackend, ocr.NewTesseractBackend())

	m := metrics.Nop()
	if o.registerer != nil {
		m = metrics.New(o.registerer)
	}

	return &Engine{
		reg:     reg,
		cache:   cache.New(o.cacheSize, o.cacheStore, o.logger),
		logger:  o.logger,
		metrics: m,
	}
}

// ExtractFile reads and extracts a document from disk. The MIME type is
// detected from the file extension first, then from content sniffing.
func (e *Engine) ExtractFile(ctx context.Context, path string, cfg *ExtractionConfig) (*model.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(KindIO, err, "reading %s", path)
	}
	mimeType := format.DetectFromPath(path)
	if mimeType == "" {
		mimeType = format.Detect(data)
	}
	return e.ExtractBytes(ctx, data, mimeType, cfg)
}

// ExtractBytes extracts a document from memory. An empty mimeType is detected
// by content sniffing. A nil cfg uses the defaults.
func (e *Engine) ExtractBytes(ctx context.Context, data []byte, mimeType string, cfg *ExtractionConfig) (*model.ExtractionResult, error) {
	if mimeType == "" {
		mimeType = format.Detect(data)
	}
	if mimeType == "" {
		return nil, NewError(KindUnsupportedFormat, "could not detect document format")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e.metrics.DocumentBytes.Observe(float64(len(data)))

	if !cfg.useCache() {
		return e.observe(mimeType, func() (*model.ExtractionResult, error) {
			return e.extract(ctx, data, mimeType, cfg)
		})
	}

	key := cache.Fingerprint(data, mimeType, cfg.canonical())
	computed := false
	result, err := e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*model.ExtractionResult, error) {
		computed = true
		return e.observe(mimeType, func() (*model.ExtractionResult, error) {
			return e.extract(ctx, data, mimeType, cfg)
		})
	})
	if err != nil {
		return nil, err
	}
	if computed {
		e.metrics.CacheMissesTotal.Inc()
	} else {
		e.metrics.CacheHitsTotal.Inc()
	}
	return result, nil
}

// RegisterExtractor installs a plugin format extractor. Plugins win over
// builtins for the MIME types they claim; among plugins the latest
// registration wins.
func (e *Engine) RegisterExtractor(ext registry.DocumentExtractor) {
	e.reg.RegisterExtractor(ext)
}

// UnregisterExtractor removes a plugin extractor by name. Builtins are
// unaffected.
func (e *Engine) UnregisterExtractor(name string) { e.reg.UnregisterExtractor(name) }

// ListExtractors returns the names of registered plugin extractors.
func (e *Engine) ListExtractors() []string { return e.reg.ListExtractors() }

// ClearExtractors removes all plugin extractors, restoring builtin dispatch.
func (e *Engine) ClearExtractors() { e.reg.ClearExtractors() }

// RegisterOCRBackend installs an OCR backend under name, replacing any
// existing backend with that name.
func (e *Engine) RegisterOCRBackend(name string, b registry.OCRBackend) {
	e.reg.RegisterOCRBackend(name, b)
}

// UnregisterOCRBackend removes an OCR backend by name.
func (e *Engine) UnregisterOCRBackend(name string) { e.reg.UnregisterOCRBackend(name) }

// ListOCRBackends returns the names of registered OCR backends.
func (e *Engine) ListOCRBackends() []string { return e.reg.ListOCRBackends() }

// ClearOCRBackends removes all OCR backends, including the builtin one.
func (e *Engine) ClearOCRBackends() { e.reg.ClearOCRBackends() }

// RegisterPostProcessor installs a hook that mutates results after the
// pipeline assembles them. Lower priority runs first; equal priorities run
// in registration order.
func (e *Engine) RegisterPostProcessor(name string, p registry.PostProcessor, priority int) {
	e.reg.RegisterPostProcessor(name, p, priority)
}

// UnregisterPostProcessor removes a post-processor by name.
func (e *Engine) UnregisterPostProcessor(name string) { e.reg.UnregisterPostProcessor(name) }

// ListPostProcessors returns the names of registered post-processors.
func (e *Engine) ListPostProcessors() []string { return e.reg.ListPostProcessors() }

// ClearPostProcessors removes all post-processors.
func (e *Engine) ClearPostProcessors() { e.reg.ClearPostProcessors() }

// RegisterValidator installs a hook that inspects the final result and may
// reject it. Validators run after post-processors.
func (e *Engine) RegisterValidator(name string, v registry.Validator, priority int) {
	e.reg.RegisterValidator(name, v, priority)
}

// UnregisterValidator removes a validator by name.
func (e *Engine) UnregisterValidator(name string) { e.reg.UnregisterValidator(name) }

// ListValidators returns the names of registered validators.
func (e *Engine) ListValidators() []string { return e.reg.ListValidators() }

// ClearValidators removes all validators.
func (e *Engine) ClearValidators() { e.reg.ClearValidators() }

// CacheStats reports hit/miss counters and the current entry count.
func (e *Engine) CacheStats() cache.Stats { return e.cache.Stats() }

// ClearCache empties the result cache, including the persistent store.
func (e *Engine) ClearCache() { e.cache.Clear() }

// Close releases the engine's resources (the persistent cache store, when
// one was configured).
func (e *Engine) Close() error { return e.cache.Close() }

// DetectMimeType sniffs a document's MIME type from its content.
func DetectMimeType(data []byte) string { return format.Detect(data) }

// DetectMimeTypeFromPath maps a file extension to a MIME type. Returns ""
// for unknown extensions.
func DetectMimeTypeFromPath(path string) string { return format.DetectFromPath(path) }

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the shared package-level engine, creating it on first use.
func Default() *Engine {
	defaultOnce.Do(func() { defaultEngine = New() })
	return defaultEngine
}

// ExtractFile extracts a document from disk using the default engine.
func ExtractFile(ctx context.Context, path string, cfg *ExtractionConfig) (*model.ExtractionResult, error) {
	return Default().ExtractFile(ctx, path, cfg)
}

// ExtractBytes extracts a document from memory using the default engine.
func ExtractBytes(ctx context.Context, data []byte, mimeType string, cfg *ExtractionConfig) (*model.ExtractionResult, error) {
	return Default().ExtractBytes(ctx, data, mimeType, cfg)
}

// Package-level plugin registration, delegating to the default engine.

// RegisterExtractor installs a plugin extractor on the default engine.
func RegisterExtractor(ext registry.DocumentExtractor) { Default().RegisterExtractor(ext) }

// UnregisterExtractor removes a plugin extractor from the default engine.
func UnregisterExtractor(name string) { Default().UnregisterExtractor(name) }

// ListExtractors lists the default engine's plugin extractors.
func ListExtractors() []string { return Default().ListExtractors() }

// ClearExtractors removes the default engine's plugin extractors.
func ClearExtractors() { Default().ClearExtractors() }

// RegisterOCRBackend installs an OCR backend on the default engine.
func RegisterOCRBackend(name string, b registry.OCRBackend) {
	Default().RegisterOCRBackend(name, b)
}

// UnregisterOCRBackend removes an OCR backend from the default engine.
func UnregisterOCRBackend(name string) { Default().UnregisterOCRBackend(name) }

// ListOCRBackends lists the default engine's OCR backends.
func ListOCRBackends() []string { return Default().ListOCRBackends() }

// ClearOCRBackends removes the default engine's OCR backends.
func ClearOCRBackends() { Default().ClearOCRBackends() }

// RegisterPostProcessor installs a post-processor on the default engine.
func RegisterPostProcessor(name string, p registry.PostProcessor, priority int) {
	Default().RegisterPostProcessor(name, p, priority)
}

// UnregisterPostProcessor removes a post-processor from the default engine.
func UnregisterPostProcessor(name string) { Default().UnregisterPostProcessor(name) }

// ListPostProcessors lists the default engine's post-processors.
func ListPostProcessors() []string { return Default().ListPostProcessors() }

// ClearPostProcessors removes the default engine's post-processors.
func ClearPostProcessors() { Default().ClearPostProcessors() }

// RegisterValidator installs a validator on the default engine.
func RegisterValidator(name string, v registry.Validator, priority int) {
	Default().RegisterValidator(name, v, priority)
}

// UnregisterValidator removes a validator from the default engine.
func UnregisterValidator(name string) { Default().UnregisterValidator(name) }

// ListValidators lists the default engine's validators.
func ListValidators() []string { return Default().ListValidators() }

// ClearValidators removes the default engine's validators.
func ClearValidators() { Default().ClearValidators() }

// CacheStats reports the default engine's cache counters.
func CacheStats() cache.Stats { return Default().CacheStats() }

// ClearCache empties the default engine's result cache.
func ClearCache() { Default().ClearCache() }
