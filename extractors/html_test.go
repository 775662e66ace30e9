package extractors

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/tsawler/scribe/model"
)

func extractHTML(t *testing.T, src string, opts model.ExtractOptions) *model.RawExtraction {
	t.Helper()
	raw, err := (&HTMLExtractor{}).Extract(context.Background(), []byte(src), opts)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return raw
}

func TestHTMLTitleAndHeadings(t *testing.T) {
	src := `<html><head><title>Doc Title</title></head><body>
<h1>Main</h1><p>Body text.</p><h2>Sub</h2></body></html>`
	raw := extractHTML(t, src, model.ExtractOptions{})

	if raw.Metadata.Title != "Doc Title" {
		t.Errorf("title = %q, want Doc Title", raw.Metadata.Title)
	}

	if len(raw.Blocks) != 3 {
		t.Fatalf("got %d blocks: %+v", len(raw.Blocks), raw.Blocks)
	}
	if raw.Blocks[0].Kind != model.BlockHeading || raw.Blocks[0].Level != 1 || raw.Blocks[0].Text != "Main" {
		t.Errorf("h1 block = %+v", raw.Blocks[0])
	}
	if raw.Blocks[2].Level != 2 {
		t.Errorf("h2 level = %d", raw.Blocks[2].Level)
	}
}

func TestHTMLInlineAnnotations(t *testing.T) {
	raw := extractHTML(t, `<p>Hello <strong>brave</strong> new <a href="https://example.com">world</a></p>`, model.ExtractOptions{})

	if len(raw.Blocks) != 1 {
		t.Fatalf("got %d blocks", len(raw.Blocks))
	}
	b := raw.Blocks[0]
	if b.Text != "Hello brave new world" {
		t.Fatalf("text = %q", b.Text)
	}
	if len(b.Annotations) != 2 {
		t.Fatalf("got %d annotations: %+v", len(b.Annotations), b.Annotations)
	}

	bold := b.Annotations[0]
	if bold.Kind != model.AnnotationBold || b.Text[bold.Start:bold.End] != "brave" {
		t.Errorf("bold annotation covers %q", b.Text[bold.Start:bold.End])
	}
	link := b.Annotations[1]
	if link.Kind != model.AnnotationLink || link.URL != "https://example.com" || b.Text[link.Start:link.End] != "world" {
		t.Errorf("link annotation = %+v covers %q", link, b.Text[link.Start:link.End])
	}
	for _, a := range b.Annotations {
		if err := a.Validate(b.Text); err != nil {
			t.Errorf("annotation invalid: %v", err)
		}
	}
}

func TestHTMLTable(t *testing.T) {
	src := `<table>
<tr><th>Celsius</th><th>Fahrenheit</th></tr>
<tr><td>0</td><td>32</td></tr>
<tr><td>100</td><td>212</td></tr>
</table>`
	raw := extractHTML(t, src, model.ExtractOptions{})

	if len(raw.Tables) != 1 {
		t.Fatalf("got %d tables", len(raw.Tables))
	}
	tbl := raw.Tables[0]
	want := [][]string{{"Celsius", "Fahrenheit"}, {"0", "32"}, {"100", "212"}}
	if !reflect.DeepEqual(tbl.Cells, want) {
		t.Errorf("cells = %v, want %v", tbl.Cells, want)
	}
	if tbl.HeaderRows != 1 {
		t.Errorf("header rows = %d, want 1", tbl.HeaderRows)
	}
}

func TestHTMLLists(t *testing.T) {
	raw := extractHTML(t, `<ol><li>first</li><li>second</li></ol>`, model.ExtractOptions{})

	if len(raw.Blocks) != 3 {
		t.Fatalf("got %d blocks: %+v", len(raw.Blocks), raw.Blocks)
	}
	if raw.Blocks[0].Kind != model.BlockList || !raw.Blocks[0].Ordered {
		t.Errorf("list block = %+v", raw.Blocks[0])
	}
	if raw.Blocks[1].Text != "first" || raw.Blocks[2].Text != "second" {
		t.Errorf("items = %q, %q", raw.Blocks[1].Text, raw.Blocks[2].Text)
	}
}

func TestHTMLCodeBlock(t *testing.T) {
	raw := extractHTML(t, `<pre><code class="language-go">func main() {}</code></pre>`, model.ExtractOptions{})

	if len(raw.Blocks) != 1 || raw.Blocks[0].Kind != model.BlockCode {
		t.Fatalf("blocks = %+v", raw.Blocks)
	}
	if raw.Blocks[0].Language != "go" {
		t.Errorf("language = %q, want go", raw.Blocks[0].Language)
	}
}

func TestHTMLSanitizeStripsScripts(t *testing.T) {
	src := `<html><body><p>visible</p><script>alert("xss")</script></body></html>`
	raw := extractHTML(t, src, model.ExtractOptions{SanitizeHTML: true})

	for _, b := range raw.Blocks {
		if strings.Contains(b.Text, "alert") {
			t.Errorf("script text leaked into block: %q", b.Text)
		}
	}
	found := false
	for _, b := range raw.Blocks {
		if strings.Contains(b.Text, "visible") {
			found = true
		}
	}
	if !found {
		t.Error("visible text lost during sanitization")
	}
}

func TestHTMLImageAlt(t *testing.T) {
	raw := extractHTML(t, `<body><img src="x.png" alt="diagram of the system"></body>`, model.ExtractOptions{})

	if len(raw.Blocks) != 1 || raw.Blocks[0].Kind != model.BlockImage {
		t.Fatalf("blocks = %+v", raw.Blocks)
	}
	if raw.Blocks[0].Text != "diagram of the system" {
		t.Errorf("alt text = %q", raw.Blocks[0].Text)
	}
}
