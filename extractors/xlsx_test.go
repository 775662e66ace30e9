package extractors

import (
	"context"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/scribe/model"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	cells := map[string]any{
		"A1": "City", "B1": "Temp",
		"A2": "Oslo", "B2": -3,
		"A3": "Rome", "B3": 18,
	}
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("set %s: %v", ref, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestXLSXExtract(t *testing.T) {
	data := buildWorkbook(t)
	raw, err := (&XLSXExtractor{}).Extract(context.Background(), data, model.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(raw.Blocks) != 2 {
		t.Fatalf("got %d blocks: %+v", len(raw.Blocks), raw.Blocks)
	}
	if raw.Blocks[0].Kind != model.BlockHeading || raw.Blocks[0].Text != "Sheet1" {
		t.Errorf("sheet heading = %+v", raw.Blocks[0])
	}
	if raw.Blocks[1].Kind != model.BlockTable || raw.Blocks[1].TableIndex != 0 {
		t.Errorf("table block = %+v", raw.Blocks[1])
	}

	if len(raw.Tables) != 1 {
		t.Fatalf("got %d tables", len(raw.Tables))
	}
	want := [][]string{{"City", "Temp"}, {"Oslo", "-3"}, {"Rome", "18"}}
	if !reflect.DeepEqual(raw.Tables[0].Cells, want) {
		t.Errorf("cells = %v, want %v", raw.Tables[0].Cells, want)
	}
	if raw.Tables[0].HeaderRows != 1 {
		t.Errorf("header rows = %d", raw.Tables[0].HeaderRows)
	}
}

func TestXLSXInvalid(t *testing.T) {
	if _, err := (&XLSXExtractor{}).Extract(context.Background(), []byte("not a workbook"), model.ExtractOptions{}); err == nil {
		t.Fatal("expected error for invalid workbook bytes")
	}
}
