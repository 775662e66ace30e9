package model

import (
	"strings"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestDocumentStructureValidate(t *testing.T) {
	s := &DocumentStructure{
		Nodes: []DocumentNode{
			{ID: "a", Type: NodeHeading, Text: "Intro", Level: 1, Children: []int{1, 2}},
			{ID: "b", Type: NodeParagraph, Text: "First.", Parent: intPtr(0)},
			{ID: "c", Type: NodeParagraph, Text: "Second.", Parent: intPtr(0)},
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("valid structure rejected: %v", err)
	}
}

func TestDocumentStructureValidateParentAfterChild(t *testing.T) {
	s := &DocumentStructure{
		Nodes: []DocumentNode{
			{ID: "a", Type: NodeParagraph, Text: "x", Parent: intPtr(1)},
			{ID: "b", Type: NodeHeading, Text: "h", Level: 1, Children: []int{0}},
		},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for parent index that does not precede node")
	}
}

func TestDocumentStructureValidateOrphanChild(t *testing.T) {
	s := &DocumentStructure{
		Nodes: []DocumentNode{
			{ID: "a", Type: NodeHeading, Text: "h", Level: 1, Children: []int{1}},
			{ID: "b", Type: NodeParagraph, Text: "x"}, // no parent back-reference
		},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for child without parent back-reference")
	}
}

func TestDocumentStructureValidateOutOfBounds(t *testing.T) {
	s := &DocumentStructure{
		Nodes: []DocumentNode{
			{ID: "a", Type: NodeHeading, Text: "h", Level: 1, Children: []int{5}},
		},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error for out-of-bounds child index")
	}
}

func TestDocumentStructureRoots(t *testing.T) {
	s := &DocumentStructure{
		Nodes: []DocumentNode{
			{ID: "a", Type: NodeHeading, Text: "h", Level: 1, Children: []int{1}},
			{ID: "b", Type: NodeParagraph, Text: "x", Parent: intPtr(0)},
			{ID: "c", Type: NodeParagraph, Text: "y"},
		},
	}
	roots := s.Roots()
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 2 {
		t.Errorf("expected roots [0 2], got %v", roots)
	}
}

func TestTextAnnotationValidate(t *testing.T) {
	text := "héllo world"

	tests := []struct {
		name    string
		ann     TextAnnotation
		wantErr bool
	}{
		{"valid bold", TextAnnotation{Start: 0, End: 6, Kind: AnnotationBold}, false},
		{"full range", TextAnnotation{Start: 0, End: len(text), Kind: AnnotationItalic}, false},
		{"empty range", TextAnnotation{Start: 3, End: 3, Kind: AnnotationCode}, false},
		{"end past text", TextAnnotation{Start: 0, End: len(text) + 1, Kind: AnnotationBold}, true},
		{"start after end", TextAnnotation{Start: 5, End: 2, Kind: AnnotationBold}, true},
		{"negative start", TextAnnotation{Start: -1, End: 2, Kind: AnnotationBold}, true},
		{"mid-rune offset", TextAnnotation{Start: 2, End: 6, Kind: AnnotationBold}, true}, // inside é
		{"link without url", TextAnnotation{Start: 0, End: 5, Kind: AnnotationLink}, true},
		{"link with url", TextAnnotation{Start: 0, End: 5, Kind: AnnotationLink, URL: "https://example.com"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ann.Validate(text)
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTableGridValidate(t *testing.T) {
	g := &TableGrid{
		Rows: 2, Cols: 2,
		Cells: []GridCell{
			{Content: "a", Row: 0, Col: 0, RowSpan: 1, ColSpan: 2, IsHeader: true},
			{Content: "b", Row: 1, Col: 0, RowSpan: 1, ColSpan: 1},
			{Content: "c", Row: 1, Col: 1, RowSpan: 1, ColSpan: 1},
		},
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}
}

func TestTableGridValidateCollision(t *testing.T) {
	g := &TableGrid{
		Rows: 2, Cols: 2,
		Cells: []GridCell{
			{Content: "a", Row: 0, Col: 0, RowSpan: 2, ColSpan: 1},
			{Content: "b", Row: 1, Col: 0, RowSpan: 1, ColSpan: 1}, // covered by a's span
		},
	}
	if err := g.Validate(); err == nil {
		t.Error("expected span collision error")
	}
}

func TestTableGridValidateZeroSpan(t *testing.T) {
	g := &TableGrid{
		Rows: 1, Cols: 1,
		Cells: []GridCell{{Content: "a", Row: 0, Col: 0, RowSpan: 0, ColSpan: 1}},
	}
	if err := g.Validate(); err == nil {
		t.Error("expected error for zero row span")
	}
}

func TestTableGridToMarkdown(t *testing.T) {
	g := &TableGrid{
		Rows: 3, Cols: 2,
		Cells: []GridCell{
			{Content: "Celsius", Row: 0, Col: 0, RowSpan: 1, ColSpan: 1, IsHeader: true},
			{Content: "Fahrenheit", Row: 0, Col: 1, RowSpan: 1, ColSpan: 1, IsHeader: true},
			{Content: "0", Row: 1, Col: 0, RowSpan: 1, ColSpan: 1},
			{Content: "32", Row: 1, Col: 1, RowSpan: 1, ColSpan: 1},
			{Content: "100", Row: 2, Col: 0, RowSpan: 1, ColSpan: 1},
			{Content: "212", Row: 2, Col: 1, RowSpan: 1, ColSpan: 1},
		},
	}

	md := g.ToMarkdown()
	if !strings.Contains(md, "Celsius") || !strings.Contains(md, "Fahrenheit") {
		t.Errorf("markdown missing headers:\n%s", md)
	}
	lines := strings.Split(strings.TrimSpace(md), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (header, separator, 2 rows), got %d:\n%s", len(lines), md)
	}
	if !strings.Contains(lines[1], "-") {
		t.Errorf("expected separator row, got %q", lines[1])
	}
}

func TestTableGridToMarkdownEscapesPipes(t *testing.T) {
	g := &TableGrid{
		Rows: 1, Cols: 1,
		Cells: []GridCell{{Content: "a|b", Row: 0, Col: 0, RowSpan: 1, ColSpan: 1}},
	}
	md := g.ToMarkdown()
	if !strings.Contains(md, `a\|b`) {
		t.Errorf("expected escaped pipe in %q", md)
	}
}

func TestMarkdownFromCells(t *testing.T) {
	cells := [][]string{
		{"Celsius", "Fahrenheit"},
		{"0", "32"},
	}
	md := MarkdownFromCells(cells)
	want := "| Celsius | Fahrenheit |\n| - | - |\n| 0 | 32 |\n"
	if md != want {
		t.Errorf("MarkdownFromCells = %q, want %q", md, want)
	}
	if MarkdownFromCells(nil) != "" {
		t.Error("expected empty markdown for no cells")
	}
}

func TestTableGridToMarkdownEmpty(t *testing.T) {
	g := &TableGrid{}
	if md := g.ToMarkdown(); md != "" {
		t.Errorf("expected empty markdown for empty grid, got %q", md)
	}
}

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}
	b := BoundingBox{X: 5, Y: 5, Width: 10, Height: 10}
	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.Width != 15 || u.Height != 15 {
		t.Errorf("unexpected union: %+v", u)
	}
	if !a.Overlaps(b) {
		t.Error("expected boxes to overlap")
	}
	c := BoundingBox{X: 100, Y: 100, Width: 1, Height: 1}
	if a.Overlaps(c) {
		t.Error("expected no overlap with distant box")
	}
}

func TestRawExtractionHasText(t *testing.T) {
	r := &RawExtraction{Blocks: []Block{{Kind: BlockParagraph, Text: "  \n\t "}}}
	if r.HasText() {
		t.Error("whitespace-only extraction should report no text")
	}
	r.Blocks = append(r.Blocks, Block{Kind: BlockParagraph, Text: "hello"})
	if !r.HasText() {
		t.Error("expected text to be detected")
	}
}
