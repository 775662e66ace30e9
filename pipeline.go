package scribe

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tsawler/scribe/chunk"
	"github.com/tsawler/scribe/internal/lang"
	"github.com/tsawler/scribe/keywords"
	"github.com/tsawler/scribe/model"
	"github.com/tsawler/scribe/ocr"
	"github.com/tsawler/scribe/structure"
	"github.com/tsawler/scribe/tables"
)

// observe wraps one pipeline run with duration and status instrumentation.
func (e *Engine) observe(mimeType string, fn func() (*model.ExtractionResult, error)) (*model.ExtractionResult, error) {
	start := time.Now()
	result, err := fn()
	e.metrics.ExtractionDuration.WithLabelValues(mimeType).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.metrics.ExtractionsTotal.WithLabelValues(mimeType, status).Inc()
	return result, err
}

// extract runs the full pipeline: format dispatch, OCR routing, structure
// building, table normalization, language detection, token reduction,
// chunking, keyword extraction, and finally the registered plugins.
func (e *Engine) extract(ctx context.Context, data []byte, mimeType string, cfg *ExtractionConfig) (*model.ExtractionResult, error) {
	ext, ok := e.reg.Resolve(mimeType)
	if !ok {
		return nil, NewError(KindUnsupportedFormat, "no extractor registered for %s", mimeType)
	}

	opts := model.ExtractOptions{
		ExtractImages: cfg != nil && cfg.Images != nil && cfg.Images.Enabled,
		TrackPages:    cfg != nil && cfg.Pages != nil && cfg.Pages.Enabled,
		SanitizeHTML:  cfg.sanitizeHTML(),
	}
	// OCR routing reads embedded images even when the caller did not ask
	// for them in the result.
	forceOCR := cfg != nil && cfg.ForceOCR
	ocrImages := cfg != nil && cfg.Images != nil && cfg.Images.Enabled && cfg.Images.OCRImages
	if forceOCR || ocrImages {
		opts.ExtractImages = true
	}

	raw, err := ext.Extract(ctx, data, opts)
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, WrapError(KindParsing, err, "extracting %s with %s", mimeType, ext.Name())
	}

	ocrTexts := make(map[int]string)
	ocrRouted := forceOCR || !raw.HasText()
	if ocrRouted {
		if err := e.runOCR(ctx, raw, cfg, ocrTexts, true); err != nil {
			return nil, err
		}
	} else if ocrImages {
		if err := e.runOCR(ctx, raw, cfg, ocrTexts, false); err != nil {
			return nil, err
		}
	}

	result := &model.ExtractionResult{
		MimeType: mimeType,
		Metadata: raw.Metadata,
	}

	if cfg.structureEnabled() {
		result.DocumentStructure = structure.Build(raw, cfg.structureConfig())
	}

	for _, t := range raw.Tables {
		result.Tables = append(result.Tables, tables.ToTable(t))
	}

	content := assembleContent(raw, result.Tables)
	if cfg.qualityProcessing() {
		content = cleanContent(content)
	}

	langCode := ""
	if lc, enabled := cfg.langConfig(); enabled {
		result.DetectedLanguages = lang.Detect(content, lc)
		if len(result.DetectedLanguages) > 0 {
			langCode = baseLang(result.DetectedLanguages[0])
		}
	}

	if mode := cfg.reductionMode(); mode != chunk.ReduceNone {
		content = chunk.Reduce(content, mode, cfg.preserveImportantWords(), langCode)
	}
	result.Content = content

	if cfg != nil && cfg.Pages != nil && cfg.Pages.Enabled {
		result.Pages = pageContents(raw)
	}

	if cfg != nil && cfg.Images != nil && cfg.Images.Enabled {
		for i, img := range raw.Images {
			result.Images = append(result.Images, model.ExtractedImage{
				Data:        img.Data,
				Format:      img.Format,
				Page:        img.Page,
				Index:       i,
				Description: img.Description,
				OCRText:     ocrTexts[i],
			})
		}
	}

	if cc, enabled := cfg.chunkConfig(langCode); enabled {
		chunks, err := chunk.Split(content, cc)
		if err != nil {
			return nil, WrapError(KindValidation, err, "chunking")
		}
		result.Chunks = chunks
	}

	if cfg != nil && cfg.Keywords != nil {
		kcfg := *cfg.Keywords
		if kcfg.Language == "" {
			kcfg.Language = langCode
		}
		kws, err := keywords.Extract(content, kcfg)
		if err != nil {
			return nil, WrapError(KindValidation, err, "extracting keywords")
		}
		result.Keywords = kws
	}

	for _, p := range e.reg.PostProcessors() {
		if err := p.Plugin.Process(ctx, result); err != nil {
			return nil, WrapError(KindPlugin, err, "post-processor %q", p.Name)
		}
	}
	for _, v := range e.reg.Validators() {
		if err := v.Plugin.Validate(ctx, result); err != nil {
			return nil, WrapError(KindPlugin, err, "validator %q", v.Name)
		}
	}

	return result, nil
}

// runOCR recognizes every embedded image. With intoBlocks set the recognized
// text and tables are appended to the raw extraction (the document's own text
// was empty or OCR was forced); otherwise only ocrTexts is filled, for the
// per-image OCR option.
func (e *Engine) runOCR(ctx context.Context, raw *model.RawExtraction, cfg *ExtractionConfig, ocrTexts map[int]string, intoBlocks bool) error {
	if len(raw.Images) == 0 {
		e.logger.Warn().Msg("ocr requested but the document has no images to recognize")
		return nil
	}

	pipe := ocr.NewPipeline(e.reg, cfg.preprocessConfig(), e.logger)
	backend := cfg.ocrBackend()
	backendCfg := cfg.ocrBackendConfig()

	for i := range raw.Images {
		res, err := pipe.Run(ctx, raw.Images[i].Data, backend, backendCfg)
		if err != nil {
			e.metrics.OCRRunsTotal.WithLabelValues(backendLabel(backend), "error").Inc()
			var unknown *ocr.ErrUnknownBackend
			if errors.As(err, &unknown) {
				return WrapError(KindMissingDependency, err, "ocr backend %q is not registered", unknown.Name)
			}
			return WrapError(KindOCR, err, "recognizing image %d", i)
		}
		e.metrics.OCRRunsTotal.WithLabelValues(backendLabel(backend), "ok").Inc()

		ocrTexts[i] = res.Text
		if !intoBlocks {
			continue
		}
		page := raw.Images[i].Page
		for _, para := range textParagraphs(res.Text) {
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockParagraph,
				Text:       para,
				Page:       page,
				Confidence: res.Confidence,
				TableIndex: -1,
				ImageIndex: -1,
			})
		}
		for _, t := range res.Tables {
			if t.Page == 0 {
				t.Page = page
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockTable,
				Page:       page,
				Confidence: res.Confidence,
				TableIndex: len(raw.Tables),
				ImageIndex: -1,
			})
			raw.Tables = append(raw.Tables, t)
		}
	}
	return nil
}

func backendLabel(name string) string {
	if name == "" {
		return ocr.DefaultBackend
	}
	return name
}

// assembleContent flattens the block sequence into the canonical document
// text. Table blocks render as markdown; list items get a bullet prefix;
// image blocks contribute their alt text.
func assembleContent(raw *model.RawExtraction, normalized []model.Table) string {
	var parts []string
	for _, b := range raw.Blocks {
		switch b.Kind {
		case model.BlockTable:
			if b.TableIndex >= 0 && b.TableIndex < len(normalized) {
				if md := normalized[b.TableIndex].Markdown; md != "" {
					parts = append(parts, md)
				}
			}
		case model.BlockListItem:
			if b.Text != "" {
				parts = append(parts, "- "+b.Text)
			}
		case model.BlockList, model.BlockPageBreak:
			// containers and markers carry no text of their own
		default:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// pageContents groups block text by page number. Blocks without a page
// number (unpaged formats) are skipped.
func pageContents(raw *model.RawExtraction) []model.PageContent {
	byPage := make(map[int][]string)
	for _, b := range raw.Blocks {
		if b.Page <= 0 || b.Text == "" || b.Kind == model.BlockPageBreak {
			continue
		}
		byPage[b.Page] = append(byPage[b.Page], b.Text)
	}
	if len(byPage) == 0 {
		return nil
	}
	nums := make([]int, 0, len(byPage))
	for n := range byPage {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	pages := make([]model.PageContent, 0, len(nums))
	for _, n := range nums {
		pages = append(pages, model.PageContent{
			Number:  n,
			Content: strings.Join(byPage[n], "\n\n"),
		})
	}
	return pages
}

// textParagraphs splits recognized text on blank lines.
func textParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func baseLang(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}
