// Package extractors holds the built-in format extractors the engine
// registers as fallbacks: plain text and markdown, CSV/TSV, HTML, PDF, DOCX,
// XLSX, and images. Each extractor turns one format into a RawExtraction of
// typed blocks; normalization (structure, tables, chunking, OCR routing) is
// the engine's job.
package extractors
