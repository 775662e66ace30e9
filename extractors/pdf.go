package extractors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// PDFExtractor pulls native text out of PDFs. Positioned text fragments are
// grouped into lines and blocks so font sizes survive for heading clustering;
// documents whose glyph map defeats that path fall back to raw content-stream
// text. Scanned PDFs (image streams, no text layer) get their page images
// decoded so the engine's OCR routing has something to recognize.
type PDFExtractor struct{}

func (e *PDFExtractor) Name() string { return "pdf" }

func (e *PDFExtractor) SupportedMimeTypes() []string {
	return []string{format.MimePDF}
}

const (
	// lineTolerance groups text fragments onto one baseline.
	lineTolerance = 2.0

	// wordGap is the horizontal gap (pt) that separates two fragments
	// into distinct words.
	wordGap = 1.0
)

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	raw := &model.RawExtraction{PageCount: pctx.PageCount}

	if rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		for pageNr := 1; pageNr <= rd.NumPage(); pageNr++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page := rd.Page(pageNr)
			if page.V.IsNull() {
				continue
			}
			appendPDFPage(page, pageNr, opts, raw)
			if opts.TrackPages && pageNr < rd.NumPage() {
				raw.Blocks = append(raw.Blocks, model.Block{
					Kind:       model.BlockPageBreak,
					Page:       pageNr,
					TableIndex: -1,
					ImageIndex: -1,
				})
			}
		}
	}

	if !raw.HasText() {
		// Positioned extraction failed (broken font maps, exotic
		// encodings). Scrape the content streams directly.
		for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
			text := contentStreamText(pctx, pageNr)
			if text == "" {
				continue
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockParagraph,
				Text:       text,
				Page:       pageNr,
				TableIndex: -1,
				ImageIndex: -1,
			})
		}
	}

	if hasImageStreams(pctx) {
		if raw.Metadata.Custom == nil {
			raw.Metadata.Custom = make(map[string]string)
		}
		raw.Metadata.Custom["has_image_streams"] = "true"

		// Scanned documents and forced-OCR runs need the page images
		// themselves, not just the signal that they exist.
		if opts.ExtractImages || !raw.HasText() {
			appendPDFImages(pctx, raw)
		}
	}

	return raw, nil
}

// appendPDFImages decodes the image XObjects of every page into the raw
// extraction. Images shared between pages are decoded once, at their first
// page of use; per-page decode failures skip that page.
func appendPDFImages(pctx *pdfmodel.Context, raw *model.RawExtraction) {
	seen := make(map[int]bool)
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		imgs, err := pdfcpu.ExtractPageImages(pctx, pageNr, false)
		if err != nil {
			continue
		}
		objNrs := make([]int, 0, len(imgs))
		for objNr := range imgs {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)
		for _, objNr := range objNrs {
			if seen[objNr] {
				continue
			}
			seen[objNr] = true
			img := imgs[objNr]
			if img.Reader == nil {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockImage,
				Page:       pageNr,
				TableIndex: -1,
				ImageIndex: len(raw.Images),
			})
			raw.Images = append(raw.Images, model.RawImage{
				Data:   data,
				Format: imageFileType(img.FileType),
				Page:   pageNr,
			})
		}
	}
}

// imageFileType maps pdfcpu's file type names onto the image format names
// used everywhere else ("jpg" vs "jpeg").
func imageFileType(ft string) string {
	if ft == "jpg" {
		return "jpeg"
	}
	return ft
}

// pdfLine is one reconstructed baseline of text.
type pdfLine struct {
	y, x0, x1 float64
	fontSize  float64
	text      string
}

// appendPDFPage reconstructs lines from positioned fragments and merges
// consecutive same-size lines into blocks. Falls back to the page's plain
// text when no positioned fragments exist.
func appendPDFPage(page pdf.Page, pageNr int, opts model.ExtractOptions, raw *model.RawExtraction) {
	content := page.Content()
	lines := buildLines(content.Text)
	if len(lines) == 0 {
		text, err := page.GetPlainText(nil)
		if err != nil {
			return
		}
		for _, para := range splitParagraphs(text) {
			raw.Blocks = append(raw.Blocks, model.Block{
				Kind:       model.BlockParagraph,
				Text:       para,
				Page:       pageNr,
				TableIndex: -1,
				ImageIndex: -1,
			})
		}
		return
	}

	body := dominantFontSize(lines)

	i := 0
	for i < len(lines) {
		j := i + 1
		for j < len(lines) &&
			math.Abs(lines[j].fontSize-lines[i].fontSize) < 0.5 &&
			lines[j-1].y-lines[j].y < 1.8*math.Max(lines[i].fontSize, 1) {
			j++
		}

		parts := make([]string, 0, j-i)
		x0, x1 := lines[i].x0, lines[i].x1
		yBottom, yTop := lines[j-1].y, lines[i].y+lines[i].fontSize
		for _, l := range lines[i:j] {
			parts = append(parts, l.text)
			x0 = math.Min(x0, l.x0)
			x1 = math.Max(x1, l.x1)
		}

		kind := model.BlockParagraph
		// Short oversized blocks are heading candidates; the structure
		// builder clusters their sizes into levels.
		if j-i <= 2 && lines[i].fontSize > body*1.1 {
			kind = model.BlockHeading
		}

		b := model.Block{
			Kind:       kind,
			Text:       strings.Join(parts, " "),
			Page:       pageNr,
			FontSize:   lines[i].fontSize,
			TableIndex: -1,
			ImageIndex: -1,
		}
		if opts.TrackPages {
			b.BBox = &model.BoundingBox{X: x0, Y: yBottom, Width: x1 - x0, Height: yTop - yBottom}
		}
		raw.Blocks = append(raw.Blocks, b)
		i = j
	}
}

// buildLines groups positioned fragments by baseline and stitches them into
// reading-order lines, top of page first.
func buildLines(texts []pdf.Text) []pdfLine {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []pdfLine
	var cur *pdfLine
	var sb strings.Builder
	var prevEnd float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.text = strings.TrimSpace(sb.String())
		if cur.text != "" {
			lines = append(lines, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, t := range sorted {
		if t.S == "" {
			continue
		}
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			flush()
			cur = &pdfLine{y: t.Y, x0: t.X, fontSize: t.FontSize}
			prevEnd = t.X
		}
		if t.X-prevEnd > wordGap && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
		if prevEnd > cur.x1 {
			cur.x1 = prevEnd
		}
		if t.FontSize > cur.fontSize {
			cur.fontSize = t.FontSize
		}
	}
	flush()

	return lines
}

// dominantFontSize returns the most frequent line font size, the page body size.
func dominantFontSize(lines []pdfLine) float64 {
	counts := make(map[float64]int)
	for _, l := range lines {
		counts[math.Round(l.fontSize*2)/2]++
	}
	best, bestN := 0.0, 0
	for size, n := range counts {
		if n > bestN || (n == bestN && size < best) {
			best, bestN = size, n
		}
	}
	return best
}

// hasImageStreams reports whether the document carries image XObjects,
// the marker of a scanned document needing OCR.
func hasImageStreams(ctx *pdfmodel.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

var pdfStringLiteral = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// contentStreamText scrapes Tj/TJ/' show operators from a page's raw content
// stream. Lossy, but better than nothing for malformed documents.
func contentStreamText(ctx *pdfmodel.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		showsText := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if !showsText {
			if bytes.Equal(line, []byte("T*")) && sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			continue
		}
		for _, m := range pdfStringLiteral.FindAllSubmatch(line, -1) {
			if s := decodePDFString(m[1]); s != "" {
				sb.WriteString(s)
				sb.WriteByte(' ')
			}
		}
	}
	return normalizeStreamText(sb.String())
}

// decodePDFString resolves backslash escapes in a PDF string literal.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

func normalizeStreamText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteRune('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
