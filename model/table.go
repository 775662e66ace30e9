package model

import (
	"fmt"
	"strings"
)

// Table is the simple row-major table representation carried on
// ExtractionResult. TableGrid is the richer model used for Table nodes in the
// document structure.
type Table struct {
	// Cells is the row-major grid of cell text. The first row holds headers
	// when the source format distinguishes them.
	Cells [][]string `json:"cells"`

	// Markdown is a pipe-table rendering of the cells.
	Markdown string `json:"markdown"`

	// PageNumber is the 1-indexed page the table appears on, 0 if unknown.
	PageNumber int `json:"page_number,omitempty"`

	// BBox locates the table on the page when geometry is available.
	BBox *BoundingBox `json:"bounding_box,omitempty"`
}

// TableGrid is a structured table with cell-level span metadata.
type TableGrid struct {
	// Rows is the number of rows in the table.
	Rows int `json:"rows"`

	// Cols is the number of columns in the table.
	Cols int `json:"cols"`

	// Cells holds all anchor cells in row-major order. Positions covered by
	// a span have no cell of their own.
	Cells []GridCell `json:"cells"`
}

// GridCell is one cell of a TableGrid.
type GridCell struct {
	// Content is the cell text.
	Content string `json:"content"`

	// Row and Col are the zero-indexed anchor position.
	Row int `json:"row"`
	Col int `json:"col"`

	// RowSpan and ColSpan are the number of rows/columns the cell covers.
	// Always >= 1.
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`

	// IsHeader reports whether this is a header cell.
	IsHeader bool `json:"is_header,omitempty"`

	// BBox locates the cell when geometry is available.
	BBox *BoundingBox `json:"bbox,omitempty"`
}

// Validate checks the grid invariants: every cell within bounds, spans >= 1,
// and no two cells claiming the same (row, col) after span expansion.
func (g *TableGrid) Validate() error {
	claimed := make(map[[2]int]int, len(g.Cells))
	for i, c := range g.Cells {
		if c.RowSpan < 1 || c.ColSpan < 1 {
			return fmt.Errorf("cell %d: span must be >= 1, got %dx%d", i, c.RowSpan, c.ColSpan)
		}
		if c.Row < 0 || c.Col < 0 || c.Row+c.RowSpan > g.Rows || c.Col+c.ColSpan > g.Cols {
			return fmt.Errorf("cell %d: position (%d,%d) span %dx%d exceeds grid %dx%d",
				i, c.Row, c.Col, c.RowSpan, c.ColSpan, g.Rows, g.Cols)
		}
		for r := c.Row; r < c.Row+c.RowSpan; r++ {
			for col := c.Col; col < c.Col+c.ColSpan; col++ {
				if prev, ok := claimed[[2]int{r, col}]; ok {
					return fmt.Errorf("cells %d and %d both claim position (%d,%d)", prev, i, r, col)
				}
				claimed[[2]int{r, col}] = i
			}
		}
	}
	return nil
}

// IsEmpty reports whether the grid has no rows or columns.
func (g *TableGrid) IsEmpty() bool {
	return g.Rows == 0 || g.Cols == 0
}

// CellAt returns the anchor cell at (row, col), or nil if the position is
// covered by a span or empty.
func (g *TableGrid) CellAt(row, col int) *GridCell {
	for i := range g.Cells {
		if g.Cells[i].Row == row && g.Cells[i].Col == col {
			return &g.Cells[i]
		}
	}
	return nil
}

// ToCells expands the grid into a row-major [][]string. Span-covered
// positions receive empty strings.
func (g *TableGrid) ToCells() [][]string {
	rows := make([][]string, g.Rows)
	for r := range rows {
		rows[r] = make([]string, g.Cols)
	}
	for _, c := range g.Cells {
		if c.Row < g.Rows && c.Col < g.Cols {
			rows[c.Row][c.Col] = c.Content
		}
	}
	return rows
}

// ToMarkdown renders the grid as a pipe table with a `-` separator row.
// Literal pipes in cell content are escaped. An empty grid renders as "".
func (g *TableGrid) ToMarkdown() string {
	if g.IsEmpty() {
		return ""
	}
	return cellsToMarkdown(g.ToCells())
}

// MarkdownFromCells renders row-major cells as a pipe table. The first row is
// treated as the header row.
func MarkdownFromCells(cells [][]string) string {
	return cellsToMarkdown(cells)
}

func cellsToMarkdown(cells [][]string) string {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for _, cell := range row {
			sb.WriteString(" ")
			sb.WriteString(escapeMarkdownCell(cell))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(cells[0])

	sb.WriteString("|")
	for range cells[0] {
		sb.WriteString(" - |")
	}
	sb.WriteString("\n")

	for _, row := range cells[1:] {
		writeRow(row)
	}

	return sb.String()
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
