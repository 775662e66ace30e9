package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestDetectFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", MimePDF},
		{"NOTES.TXT", MimePlainText},
		{"readme.md", MimeMarkdown},
		{"data.csv", MimeCSV},
		{"index.html", MimeHTML},
		{"deck.pptx", MimePPTX},
		{"sheet.xlsx", MimeXLSX},
		{"letter.docx", MimeDOCX},
		{"scan.tiff", MimeTIFF},
		{"photo.jpeg", MimeJPEG},
		{"archive.bin", ""},
		{"noextension", ""},
	}

	for _, tc := range tests {
		if got := DetectFromPath(tc.path); got != tc.want {
			t.Errorf("DetectFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestDetectMagicBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf", []byte("%PDF-1.7 rest of file"), MimePDF},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, MimePNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, MimeJPEG},
		{"gif", []byte("GIF89a......"), MimeGIF},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00, 1, 2}, MimeTIFF},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A, 1, 2}, MimeTIFF},
		{"html doctype", []byte("  <!DOCTYPE html><html></html>"), MimeHTML},
		{"html tag", []byte("<html lang=\"en\"><body></body></html>"), MimeHTML},
		{"plain text", []byte("Just some ordinary text content here."), MimePlainText},
		{"binary", append([]byte{0x00, 0x01, 0x02}, make([]byte, 16)...), ""},
		{"too short", []byte{1}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detect(tc.data); got != tc.want {
				t.Errorf("Detect() = %q, want %q", got, tc.want)
			}
		})
	}
}

// buildZIP creates an in-memory ZIP archive with the given file names.
func buildZIP(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDetectZIPContainers(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    string
	}{
		{"docx", map[string]string{"[Content_Types].xml": "<Types/>", "word/document.xml": "<w:document/>"}, MimeDOCX},
		{"xlsx", map[string]string{"[Content_Types].xml": "<Types/>", "xl/workbook.xml": "<workbook/>"}, MimeXLSX},
		{"pptx", map[string]string{"[Content_Types].xml": "<Types/>", "ppt/presentation.xml": "<p/>"}, MimePPTX},
		{"odt", map[string]string{"mimetype": "application/vnd.oasis.opendocument.text", "content.xml": "<office/>"}, MimeODT},
		{"plain zip", map[string]string{"readme.txt": "hi"}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := buildZIP(t, tc.entries)
			if got := Detect(data); got != tc.want {
				t.Errorf("Detect() = %q, want %q", got, tc.want)
			}
		})
	}
}
