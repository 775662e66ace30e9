package extractors

import (
	"archive/zip"
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/tsawler/scribe/model"
)

// buildDocx assembles a minimal .docx container in memory.
func buildDocx(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

const docxNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func TestDOCXHeadingsAndParagraphs(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document ` + docxNS + `><w:body>
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Report</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Introduction</w:t></w:r></w:p>
<w:p><w:r><w:t>Plain body text.</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Background</w:t></w:r></w:p>
</w:body></w:document>`

	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	raw, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	type bk struct {
		kind  model.BlockKind
		text  string
		level int
	}
	want := []bk{
		{model.BlockTitle, "Report", 0},
		{model.BlockHeading, "Introduction", 1},
		{model.BlockParagraph, "Plain body text.", 0},
		{model.BlockHeading, "Background", 2},
	}
	if len(raw.Blocks) != len(want) {
		t.Fatalf("got %d blocks: %+v", len(raw.Blocks), raw.Blocks)
	}
	for i, w := range want {
		b := raw.Blocks[i]
		if b.Kind != w.kind || b.Text != w.text || b.Level != w.level {
			t.Errorf("block %d = {%s %q %d}, want {%s %q %d}", i, b.Kind, b.Text, b.Level, w.kind, w.text, w.level)
		}
	}
}

func TestDOCXRunAnnotations(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document ` + docxNS + `><w:body>
<w:p><w:r><w:t>Normal </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r><w:r><w:t> and </w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r></w:p>
</w:body></w:document>`

	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	raw, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(raw.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(raw.Blocks))
	}
	b := raw.Blocks[0]
	if b.Text != "Normal bold and italic" {
		t.Fatalf("text = %q", b.Text)
	}
	if len(b.Annotations) != 2 {
		t.Fatalf("got %d annotations: %+v", len(b.Annotations), b.Annotations)
	}
	if got := b.Text[b.Annotations[0].Start:b.Annotations[0].End]; got != "bold" || b.Annotations[0].Kind != model.AnnotationBold {
		t.Errorf("first annotation covers %q kind %s", got, b.Annotations[0].Kind)
	}
	if got := b.Text[b.Annotations[1].Start:b.Annotations[1].End]; got != "italic" || b.Annotations[1].Kind != model.AnnotationItalic {
		t.Errorf("second annotation covers %q kind %s", got, b.Annotations[1].Kind)
	}
}

func TestDOCXTableAndListItems(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document ` + docxNS + `><w:body>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>first item</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Celsius</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Fahrenheit</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>0</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>32</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body></w:document>`

	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	raw, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if raw.Blocks[0].Kind != model.BlockListItem || raw.Blocks[0].Text != "first item" {
		t.Errorf("list item block = %+v", raw.Blocks[0])
	}
	if len(raw.Tables) != 1 {
		t.Fatalf("got %d tables", len(raw.Tables))
	}
	want := [][]string{{"Celsius", "Fahrenheit"}, {"0", "32"}}
	if !reflect.DeepEqual(raw.Tables[0].Cells, want) {
		t.Errorf("table cells = %v, want %v", raw.Tables[0].Cells, want)
	}
}

func TestDOCXCoreProperties(t *testing.T) {
	coreXML := `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
 xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title>Quarterly Report</dc:title>
<dc:creator>J. Doe</dc:creator>
<cp:keywords>finance, q3</cp:keywords>
<dcterms:created>2024-03-01T10:00:00Z</dcterms:created>
</cp:coreProperties>`
	documentXML := `<?xml version="1.0"?>
<w:document ` + docxNS + `><w:body><w:p><w:r><w:t>x</w:t></w:r></w:p></w:body></w:document>`

	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"docProps/core.xml": coreXML,
	})
	raw, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if raw.Metadata.Title != "Quarterly Report" || raw.Metadata.Author != "J. Doe" {
		t.Errorf("metadata = %+v", raw.Metadata)
	}
	if !reflect.DeepEqual(raw.Metadata.Keywords, []string{"finance", "q3"}) {
		t.Errorf("keywords = %v", raw.Metadata.Keywords)
	}
	if raw.Metadata.CreationDate.IsZero() {
		t.Error("creation date not parsed")
	}
}

func TestDOCXEmbeddedImages(t *testing.T) {
	documentXML := `<?xml version="1.0"?>
<w:document ` + docxNS + ` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>
<w:p><w:r><w:t>with picture</w:t></w:r></w:p>
<w:p><w:r><w:drawing><a:blip r:embed="rId5"/></w:drawing></w:r></w:p>
</w:body></w:document>`
	relsXML := `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
</Relationships>`

	fakePNG := "\x89PNG\r\n\x1a\nfakebytes"
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
		"word/media/image1.png":        fakePNG,
	})

	raw, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{ExtractImages: true})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(raw.Images) != 1 {
		t.Fatalf("got %d images", len(raw.Images))
	}
	if raw.Images[0].Format != "png" || string(raw.Images[0].Data) != fakePNG {
		t.Errorf("image = format %q, %d bytes", raw.Images[0].Format, len(raw.Images[0].Data))
	}

	// Without the option the image stays out.
	raw2, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(raw2.Images) != 0 {
		t.Errorf("images extracted without ExtractImages: %d", len(raw2.Images))
	}
}

func TestDOCXMissingBody(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/other.xml": "<x/>"})
	if _, err := (&DOCXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{}); err == nil {
		t.Fatal("expected error for container without word/document.xml")
	}
}

func TestDOCXNotAZip(t *testing.T) {
	if _, err := (&DOCXExtractor{}).Extract(context.Background(), []byte("plain bytes"), model.ExtractOptions{}); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}
