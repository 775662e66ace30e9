package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// DOCXExtractor reads Word documents: paragraphs with style-derived heading
// levels, numbered/bulleted list items, tables, bold/italic/underline runs as
// annotations, core properties, and (optionally) embedded media images.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Name() string { return "docx" }

func (e *DOCXExtractor) SupportedMimeTypes() []string {
	return []string{format.MimeDOCX}
}

func (e *DOCXExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening docx container: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	docXML, err := readZipEntry(files, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("reading docx body: %w", err)
	}

	raw := &model.RawExtraction{}
	if core, err := readZipEntry(files, "docProps/core.xml"); err == nil {
		raw.Metadata = parseCoreProps(core)
	}

	if err := parseDocumentXML(docXML, raw); err != nil {
		return nil, fmt.Errorf("parsing docx body: %w", err)
	}

	if opts.ExtractImages {
		extractDocxMedia(docXML, files, raw)
	}

	return raw, nil
}

func readZipEntry(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// coreProps is docProps/core.xml. Namespaces are matched by local name.
type coreProps struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Subject  string `xml:"subject"`
	Keywords string `xml:"keywords"`
	Language string `xml:"language"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

func parseCoreProps(data []byte) model.Metadata {
	var cp coreProps
	if err := xml.Unmarshal(data, &cp); err != nil {
		return model.Metadata{}
	}

	md := model.Metadata{
		Title:    cp.Title,
		Author:   cp.Creator,
		Subject:  cp.Subject,
		Language: cp.Language,
	}
	if cp.Keywords != "" {
		for _, k := range strings.Split(cp.Keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				md.Keywords = append(md.Keywords, k)
			}
		}
	}
	if t, err := time.Parse(time.RFC3339, cp.Created); err == nil {
		md.CreationDate = t
	}
	if t, err := time.Parse(time.RFC3339, cp.Modified); err == nil {
		md.ModDate = t
	}
	return md
}

// WordprocessingML fragments, matched by local name.
type docxPara struct {
	Props *docxParaProps `xml:"pPr"`
	Runs  []docxRun      `xml:"r"`
}

type docxParaProps struct {
	Style *docxVal  `xml:"pStyle"`
	NumPr *struct{} `xml:"numPr"`
}

type docxVal struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Props *docxRunProps `xml:"rPr"`
	Text  []docxText    `xml:"t"`
}

type docxRunProps struct {
	Bold      *struct{} `xml:"b"`
	Italic    *struct{} `xml:"i"`
	Underline *docxVal  `xml:"u"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Paras []docxPara `xml:"p"`
}

// parseDocumentXML walks the body token stream so paragraphs and tables keep
// their document order. Paragraphs nested inside tables are consumed with
// their table and never seen at this level.
func parseDocumentXML(data []byte, raw *model.RawExtraction) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	inBody := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					continue
				}
				var p docxPara
				if err := dec.DecodeElement(&p, &t); err != nil {
					return err
				}
				appendDocxParagraph(p, raw)
			case "tbl":
				if !inBody {
					continue
				}
				var tbl docxTable
				if err := dec.DecodeElement(&tbl, &t); err != nil {
					return err
				}
				appendDocxTable(tbl, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				inBody = false
			}
		}
	}
}

func appendDocxParagraph(p docxPara, raw *model.RawExtraction) {
	text, anns := docxRunText(p.Runs)
	if text == "" {
		return
	}

	style := ""
	isListItem := false
	if p.Props != nil {
		if p.Props.Style != nil {
			style = p.Props.Style.Val
		}
		isListItem = p.Props.NumPr != nil
	}

	b := model.Block{
		Kind:        model.BlockParagraph,
		Text:        text,
		Annotations: anns,
		TableIndex:  -1,
		ImageIndex:  -1,
	}

	lower := strings.ToLower(style)
	switch {
	case strings.HasPrefix(lower, "title"):
		b.Kind = model.BlockTitle
	case strings.HasPrefix(lower, "heading"):
		b.Kind = model.BlockHeading
		b.Level = headingLevel(lower)
	case isListItem:
		b.Kind = model.BlockListItem
	}

	raw.Blocks = append(raw.Blocks, b)
}

func appendDocxTable(tbl docxTable, raw *model.RawExtraction) {
	var cells [][]string
	for _, row := range tbl.Rows {
		r := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			var parts []string
			for _, p := range cell.Paras {
				if t, _ := docxRunText(p.Runs); t != "" {
					parts = append(parts, t)
				}
			}
			r = append(r, strings.Join(parts, " "))
		}
		if len(r) > 0 {
			cells = append(cells, r)
		}
	}
	if len(cells) == 0 {
		return
	}

	raw.Blocks = append(raw.Blocks, model.Block{
		Kind:       model.BlockTable,
		TableIndex: len(raw.Tables),
		ImageIndex: -1,
	})
	raw.Tables = append(raw.Tables, model.RawTable{Cells: cells})
}

// docxRunText concatenates run text and turns run formatting into
// byte-offset annotations.
func docxRunText(runs []docxRun) (string, []model.TextAnnotation) {
	var sb strings.Builder
	var anns []model.TextAnnotation

	for _, r := range runs {
		start := sb.Len()
		for _, t := range r.Text {
			sb.WriteString(t.Content)
		}
		end := sb.Len()
		if r.Props == nil || start == end {
			continue
		}
		if r.Props.Bold != nil {
			anns = append(anns, model.TextAnnotation{Start: start, End: end, Kind: model.AnnotationBold})
		}
		if r.Props.Italic != nil {
			anns = append(anns, model.TextAnnotation{Start: start, End: end, Kind: model.AnnotationItalic})
		}
		if r.Props.Underline != nil && r.Props.Underline.Val != "none" {
			anns = append(anns, model.TextAnnotation{Start: start, End: end, Kind: model.AnnotationUnderline})
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", nil
	}
	// TrimSpace only removed leading bytes if the first run started with
	// whitespace; shift annotation offsets accordingly and clamp.
	shift := strings.Index(sb.String(), text)
	out := anns[:0]
	for _, a := range anns {
		a.Start -= shift
		a.End -= shift
		if a.Start < 0 {
			a.Start = 0
		}
		if a.End > len(text) {
			a.End = len(text)
		}
		if a.Start < a.End {
			out = append(out, a)
		}
	}
	return text, out
}

func headingLevel(style string) int {
	digits := strings.TrimLeftFunc(style, func(r rune) bool { return r < '0' || r > '9' })
	if n, err := strconv.Atoi(digits); err == nil && n >= 1 && n <= 9 {
		return n
	}
	return 1
}

// docxRels is word/_rels/document.xml.rels.
type docxRels struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// extractDocxMedia resolves drawing blips through the relationship table and
// pulls the referenced media bytes. Image blocks are appended after the text
// blocks; in-flow position is not preserved.
func extractDocxMedia(docXML []byte, files map[string]*zip.File, raw *model.RawExtraction) {
	relsData, err := readZipEntry(files, "word/_rels/document.xml.rels")
	if err != nil {
		return
	}
	var rels docxRels
	if err := xml.Unmarshal(relsData, &rels); err != nil {
		return
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = r.Target
	}

	dec := xml.NewDecoder(bytes.NewReader(docXML))
	seen := make(map[string]bool)
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "blip" {
			continue
		}

		var embed string
		for _, a := range start.Attr {
			if a.Name.Local == "embed" {
				embed = a.Value
				break
			}
		}
		target, ok := targets[embed]
		if embed == "" || !ok || seen[embed] {
			continue
		}
		seen[embed] = true

		mediaPath := path.Clean("word/" + target)
		imgData, err := readZipEntry(files, mediaPath)
		if err != nil {
			continue
		}

		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:       model.BlockImage,
			TableIndex: -1,
			ImageIndex: len(raw.Images),
		})
		raw.Images = append(raw.Images, model.RawImage{
			Data:   imgData,
			Format: strings.TrimPrefix(strings.ToLower(path.Ext(mediaPath)), "."),
		})
	}
}
