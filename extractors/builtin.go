package extractors

import "github.com/tsawler/scribe/registry"

// Builtin returns the built-in extractors in registration order. The engine
// installs them as fallbacks, so user registrations for the same MIME types
// shadow them.
func Builtin() []registry.DocumentExtractor {
	return []registry.DocumentExtractor{
		&TextExtractor{},
		&MarkdownExtractor{},
		&CSVExtractor{},
		&HTMLExtractor{},
		&PDFExtractor{},
		&DOCXExtractor{},
		&XLSXExtractor{},
		&ImageExtractor{},
	}
}
