// Package ocr runs images through configurable preprocessing and a pluggable
// recognition backend.
//
// The default backend wraps the Tesseract engine via gosseract and requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr libtesseract-dev
//
// Tesseract support is compiled in with the "ocr" build tag:
//
//	go build -tags ocr
//
// Without the tag the backend is a stub that reports the missing dependency.
// Preprocessing (DPI normalization, deskew, denoising, contrast enhancement,
// binarization) has no external dependencies and is always available.
package ocr
