package tables

import (
	"sort"

	"github.com/tsawler/scribe/model"
)

// Config controls how detected cells are reconciled into a regular grid.
type Config struct {
	// AlignmentTolerance is the maximum distance, in page units, between two
	// edge coordinates that are treated as the same grid boundary.
	AlignmentTolerance float64

	// MinCoverage is the fraction of a row or column band a cell's bounding
	// box must overlap before the cell claims that band as part of its span.
	MinCoverage float64
}

// DefaultConfig returns the normalization defaults.
func DefaultConfig() Config {
	return Config{
		AlignmentTolerance: 5.0,
		MinCoverage:        0.5,
	}
}

// Normalize converts a raw table into the canonical grid model using the
// default configuration. Native row-major grids pass through directly;
// detected cells with bounding boxes are reconciled by band clustering.
// A table with no rows or columns yields an empty grid rather than an error.
func Normalize(raw model.RawTable) model.TableGrid {
	return NormalizeWith(raw, DefaultConfig())
}

// NormalizeWith is Normalize with an explicit configuration.
func NormalizeWith(raw model.RawTable, cfg Config) model.TableGrid {
	if len(raw.Cells) > 0 {
		return gridFromCells(raw.Cells, raw.HeaderRows)
	}
	if len(raw.Detected) > 0 {
		return gridFromDetected(raw.Detected, cfg)
	}
	return model.TableGrid{}
}

// ToTable renders a raw table into the flat result representation, carrying
// the simple cell matrix, the Markdown rendering, and page placement.
func ToTable(raw model.RawTable) model.Table {
	grid := Normalize(raw)
	cells := grid.ToCells()
	return model.Table{
		Cells:      cells,
		Markdown:   model.MarkdownFromCells(cells),
		PageNumber: raw.Page,
		BBox:       raw.BBox,
	}
}

// gridFromCells builds a grid from a native row-major matrix. Ragged rows are
// padded to the widest row. When the source reports no header rows, the first
// row is treated as the header for any table with at least two rows.
func gridFromCells(cells [][]string, headerRows int) model.TableGrid {
	rows := len(cells)
	cols := 0
	for _, row := range cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if rows == 0 || cols == 0 {
		return model.TableGrid{}
	}

	if headerRows == 0 && rows > 1 {
		headerRows = 1
	}

	grid := model.TableGrid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]model.GridCell, 0, rows*cols),
	}
	for r, row := range cells {
		for c := 0; c < cols; c++ {
			content := ""
			if c < len(row) {
				content = row[c]
			}
			grid.Cells = append(grid.Cells, model.GridCell{
				Content:  content,
				Row:      r,
				Col:      c,
				RowSpan:  1,
				ColSpan:  1,
				IsHeader: r < headerRows,
			})
		}
	}
	return grid
}

// gridFromDetected reconciles loosely positioned cells into a regular grid.
// Row and column bands are inferred by clustering cell edges, then each cell
// is anchored at the first band it covers and spans every consecutive band
// its bounding box overlaps by at least MinCoverage.
func gridFromDetected(detected []model.DetectedCell, cfg Config) model.TableGrid {
	rowBounds := rowBoundaries(detected, cfg.AlignmentTolerance)
	colBounds := colBoundaries(detected, cfg.AlignmentTolerance)
	if len(rowBounds) < 2 || len(colBounds) < 2 {
		return model.TableGrid{}
	}

	rows := len(rowBounds) - 1
	cols := len(colBounds) - 1

	// Anchor cells by (row,col). Cells landing in an occupied anchor merge
	// their text into the existing cell instead of colliding.
	anchors := make(map[[2]int]*model.GridCell)
	order := make([][2]int, 0, len(detected))

	for _, dc := range detected {
		row, rowSpan := bandSpan(dc.BBox.Y, dc.BBox.Top(), rowBounds, true, cfg.MinCoverage)
		col, colSpan := bandSpan(dc.BBox.X, dc.BBox.Right(), colBounds, false, cfg.MinCoverage)
		if row < 0 || col < 0 {
			continue
		}

		key := [2]int{row, col}
		if cell, ok := anchors[key]; ok {
			if dc.Text != "" {
				if cell.Content != "" {
					cell.Content += " "
				}
				cell.Content += dc.Text
			}
			merged := cell.BBox.Union(dc.BBox)
			cell.BBox = &merged
			if rowSpan > cell.RowSpan {
				cell.RowSpan = rowSpan
			}
			if colSpan > cell.ColSpan {
				cell.ColSpan = colSpan
			}
			cell.IsHeader = cell.IsHeader || dc.IsHeader
			continue
		}
		bbox := dc.BBox
		anchors[key] = &model.GridCell{
			Content:  dc.Text,
			Row:      row,
			Col:      col,
			RowSpan:  rowSpan,
			ColSpan:  colSpan,
			IsHeader: dc.IsHeader,
			BBox:     &bbox,
		}
		order = append(order, key)
	}

	if len(order) == 0 {
		return model.TableGrid{}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i][0] != order[j][0] {
			return order[i][0] < order[j][0]
		}
		return order[i][1] < order[j][1]
	})

	grid := model.TableGrid{
		Rows:  rows,
		Cols:  cols,
		Cells: make([]model.GridCell, 0, len(order)),
	}
	claimed := make(map[[2]int]bool)
	for _, key := range order {
		cell := anchors[key]
		clampSpans(cell, rows, cols)
		if overlapsClaim(claimed, cell) {
			// A span conflict from noisy detection. Shrink to a single cell
			// so the grid stays valid.
			cell.RowSpan = 1
			cell.ColSpan = 1
			if overlapsClaim(claimed, cell) {
				continue
			}
		}
		claim(claimed, cell)
		grid.Cells = append(grid.Cells, *cell)
	}
	return grid
}

// rowBoundaries clusters the top and bottom edges of all cells into unique row
// boundaries, sorted top to bottom (descending, page coordinates).
func rowBoundaries(detected []model.DetectedCell, tolerance float64) []float64 {
	values := make([]float64, 0, len(detected)*2)
	for _, dc := range detected {
		values = append(values, dc.BBox.Y, dc.BBox.Top())
	}
	sort.Float64s(values)
	clustered := clusterValues(values, tolerance)
	sort.Sort(sort.Reverse(sort.Float64Slice(clustered)))
	return clustered
}

// colBoundaries clusters the left and right edges of all cells into unique
// column boundaries, sorted left to right.
func colBoundaries(detected []model.DetectedCell, tolerance float64) []float64 {
	values := make([]float64, 0, len(detected)*2)
	for _, dc := range detected {
		values = append(values, dc.BBox.X, dc.BBox.Right())
	}
	sort.Float64s(values)
	return clusterValues(values, tolerance)
}

// clusterValues merges sorted values that fall within tolerance of the running
// cluster center, averaging members into the center.
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	clustered := []float64{values[0]}
	for i := 1; i < len(values); i++ {
		last := clustered[len(clustered)-1]
		if values[i]-last > tolerance {
			clustered = append(clustered, values[i])
		} else {
			clustered[len(clustered)-1] = (last + values[i]) / 2
		}
	}
	return clustered
}

// bandSpan finds the first band the interval [lo,hi] covers by at least
// minCoverage of the band extent and counts consecutive covered bands.
// Returns (-1, 0) if the interval covers no band; the caller then drops the
// cell. For descending boundaries (rows in page coordinates) bands run from
// bounds[i] down to bounds[i+1].
func bandSpan(lo, hi float64, bounds []float64, descending bool, minCoverage float64) (anchor, span int) {
	anchor = -1
	for i := 0; i < len(bounds)-1; i++ {
		var bandLo, bandHi float64
		if descending {
			bandLo, bandHi = bounds[i+1], bounds[i]
		} else {
			bandLo, bandHi = bounds[i], bounds[i+1]
		}
		extent := bandHi - bandLo
		if extent <= 0 {
			continue
		}
		overlap := min(hi, bandHi) - max(lo, bandLo)
		if overlap/extent >= minCoverage {
			if anchor < 0 {
				anchor = i
			}
			span++
		} else if anchor >= 0 {
			break
		}
	}
	if anchor < 0 {
		// Fall back to the band containing the interval midpoint.
		mid := (lo + hi) / 2
		for i := 0; i < len(bounds)-1; i++ {
			var bandLo, bandHi float64
			if descending {
				bandLo, bandHi = bounds[i+1], bounds[i]
			} else {
				bandLo, bandHi = bounds[i], bounds[i+1]
			}
			if mid >= bandLo && mid <= bandHi {
				return i, 1
			}
		}
		return -1, 0
	}
	return anchor, span
}

// clampSpans keeps a cell's span inside the grid.
func clampSpans(cell *model.GridCell, rows, cols int) {
	if cell.Row+cell.RowSpan > rows {
		cell.RowSpan = rows - cell.Row
	}
	if cell.Col+cell.ColSpan > cols {
		cell.ColSpan = cols - cell.Col
	}
	if cell.RowSpan < 1 {
		cell.RowSpan = 1
	}
	if cell.ColSpan < 1 {
		cell.ColSpan = 1
	}
}

func overlapsClaim(claimed map[[2]int]bool, cell *model.GridCell) bool {
	for r := cell.Row; r < cell.Row+cell.RowSpan; r++ {
		for c := cell.Col; c < cell.Col+cell.ColSpan; c++ {
			if claimed[[2]int{r, c}] {
				return true
			}
		}
	}
	return false
}

func claim(claimed map[[2]int]bool, cell *model.GridCell) {
	for r := cell.Row; r < cell.Row+cell.RowSpan; r++ {
		for c := cell.Col; c < cell.Col+cell.ColSpan; c++ {
			claimed[[2]int{r, c}] = true
		}
	}
}
