package scribe

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an extraction failure. Every error returned by the
// engine carries exactly one kind, and the kind prefixes the error message so
// callers (and language bindings) see a uniform, structured failure surface.
type ErrorKind string

const (
	// KindValidation indicates bad configuration or input shape.
	KindValidation ErrorKind = "Validation"
	// KindParsing indicates malformed document bytes.
	KindParsing ErrorKind = "Parsing"
	// KindOCR indicates an OCR backend failure.
	KindOCR ErrorKind = "Ocr"
	// KindCache indicates a cache storage failure. Cache errors are degraded
	// to cache-bypass by the engine and never abort an extraction.
	KindCache ErrorKind = "Cache"
	// KindImageProcessing indicates an image decode or preprocessing failure.
	KindImageProcessing ErrorKind = "ImageProcessing"
	// KindSerialization indicates an encoding/decoding failure.
	KindSerialization ErrorKind = "Serialization"
	// KindMissingDependency indicates an absent external tool or model. The
	// message names the missing dependency.
	KindMissingDependency ErrorKind = "MissingDependency"
	// KindPlugin indicates a registered plugin callback failed. The message
	// names the plugin.
	KindPlugin ErrorKind = "Plugin"
	// KindUnsupportedFormat indicates no extractor claims the MIME type.
	KindUnsupportedFormat ErrorKind = "UnsupportedFormat"
	// KindIO indicates a file system failure.
	KindIO ErrorKind = "Io"
	// KindRuntime is the catch-all for unexpected engine failures.
	KindRuntime ErrorKind = "Runtime"
)

// Error is the uniform error type returned by the engine.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, may be nil
}

// Error implements the error interface. The message is prefixed by the kind.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given kind and message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error wrapping a cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err if it is (or wraps) an engine Error, and
// KindRuntime otherwise. A nil err returns the empty kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRuntime
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
