// Package tables normalizes heterogeneous raw table representations into the
// canonical TableGrid model. Native spreadsheet sheets arrive as row-major
// string grids; OCR and layout detection produce loose cells with bounding
// boxes. Both paths converge on a regular grid with resolved row and column
// spans and a Markdown rendering.
package tables
