package extractors

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/tsawler/scribe/format"
	"github.com/tsawler/scribe/model"
)

// CSVExtractor handles comma- and tab-separated values. The whole document
// becomes one table with the first row as header.
type CSVExtractor struct{}

func (e *CSVExtractor) Name() string { return "csv" }

func (e *CSVExtractor) SupportedMimeTypes() []string {
	return []string{format.MimeCSV, format.MimeTSV}
}

func (e *CSVExtractor) Extract(ctx context.Context, data []byte, opts model.ExtractOptions) (*model.RawExtraction, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if delimiter(data) == '\t' {
		r.Comma = '\t'
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return &model.RawExtraction{}, nil
	}

	raw := &model.RawExtraction{
		Blocks: []model.Block{{
			Kind:       model.BlockTable,
			TableIndex: 0,
			ImageIndex: -1,
		}},
		Tables: []model.RawTable{{Cells: rows, HeaderRows: 1}},
	}
	return raw, nil
}

// delimiter sniffs the separator from the first line: a tab anywhere in it
// wins over commas, since commas occur freely inside tab-separated fields.
func delimiter(data []byte) byte {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.IndexByte(line, '\t') >= 0 {
		return '\t'
	}
	return ','
}
