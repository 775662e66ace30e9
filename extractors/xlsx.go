package extractors

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// XLSXExtractor reads spreadsheet workbooks. Each sheet becomes a level-1
// heading followed by a table whose first row is the header.
type XLSXExtractor struct{}

func (e *XLSXExtractor) Name() string { return "xlsx" }

func (e *XLSXExtractor) SupportedMimeTypes() []string {
	return []string{format.MimeXLSX}
}

func (e *XLSXExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	raw := &model.RawExtraction{}

	if props, err := f.GetDocProps(); err == nil && props != nil {
		raw.Metadata.Title = props.Title
		raw.Metadata.Author = props.Creator
		raw.Metadata.Subject = props.Subject
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:       model.BlockHeading,
			Text:       sheet,
			Level:      1,
			TableIndex: -1,
			ImageIndex: -1,
		})
		raw.Blocks = append(raw.Blocks, model.Block{
			Kind:       model.BlockTable,
			TableIndex: len(raw.Tables),
			ImageIndex: -1,
		})
		raw.Tables = append(raw.Tables, model.RawTable{Cells: rows, HeaderRows: 1})
	}

	return raw, nil
}
