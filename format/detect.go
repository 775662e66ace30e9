// Package format provides MIME type detection from file content and paths.
package format

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
)

// Well-known MIME types handled by the built-in extractors.
const (
	MimePlainText = "text/plain"
	MimeMarkdown  = "text/markdown"
	MimeCSV       = "text/csv"
	MimeTSV       = "text/tab-separated-values"
	MimeHTML      = "text/html"
	MimePDF       = "application/pdf"
	MimeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePPTX      = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeODT       = "application/vnd.oasis.opendocument.text"
	MimePNG       = "image/png"
	MimeJPEG      = "image/jpeg"
	MimeTIFF      = "image/tiff"
	MimeGIF       = "image/gif"
	MimeBMP       = "image/bmp"
	MimeWebP      = "image/webp"
)

var extensionTypes = map[string]string{
	".txt":      MimePlainText,
	".text":     MimePlainText,
	".md":       MimeMarkdown,
	".markdown": MimeMarkdown,
	".csv":      MimeCSV,
	".tsv":      MimeTSV,
	".html":     MimeHTML,
	".htm":      MimeHTML,
	".xhtml":    MimeHTML,
	".pdf":      MimePDF,
	".docx":     MimeDOCX,
	".xlsx":     MimeXLSX,
	".pptx":     MimePPTX,
	".odt":      MimeODT,
	".png":      MimePNG,
	".jpg":      MimeJPEG,
	".jpeg":     MimeJPEG,
	".tif":      MimeTIFF,
	".tiff":     MimeTIFF,
	".gif":      MimeGIF,
	".bmp":      MimeBMP,
	".webp":     MimeWebP,
}

// DetectFromPath determines the MIME type from the filename extension.
// Returns "" when the extension is not recognized.
func DetectFromPath(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

// Detect determines the MIME type from content magic bytes. ZIP containers
// are opened to distinguish OOXML and OpenDocument formats. Content that is
// valid UTF-8-ish text falls back to text/plain; "" means undetectable.
func Detect(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return MimePDF
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}):
		return MimePNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return MimeJPEG
	case bytes.HasPrefix(data, []byte("GIF8")):
		return MimeGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return MimeBMP
	case bytes.HasPrefix(data, []byte{0x49, 0x49, 0x2A, 0x00}),
		bytes.HasPrefix(data, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return MimeTIFF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return MimeWebP
	case bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}):
		return detectZIP(data)
	}

	if isHTML(data) {
		return MimeHTML
	}
	if isText(data) {
		return MimePlainText
	}
	return ""
}

// detectZIP inspects a ZIP archive to distinguish DOCX, XLSX, PPTX, and ODT.
func detectZIP(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	// OpenDocument archives carry an uncompressed mimetype entry first.
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			buf := make([]byte, 256)
			n, _ := rc.Read(buf)
			rc.Close()
			if strings.Contains(string(buf[:n]), "opendocument.text") {
				return MimeODT
			}
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return MimeDOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return MimeXLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return MimePPTX
		}
	}
	return ""
}

// isHTML checks for HTML signatures after leading whitespace.
func isHTML(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	upper := strings.ToUpper(string(trimmed[:min(len(trimmed), 512)]))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// isText reports whether the leading bytes look like plain text: no NUL and a
// high ratio of printable characters.
func isText(data []byte) bool {
	sample := data[:min(len(data), 1024)]
	printable := 0
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b >= 0x20 || b == '\n' || b == '\r' || b == '\t' {
			printable++
		}
	}
	return printable*10 >= len(sample)*9
}
