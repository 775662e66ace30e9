package ocr

// TesseractConfig is the backend-specific knob set, decoded from the opaque
// config the pipeline passes through. All fields are optional. It lives
// outside the build-tagged backend so configs referencing it compile with or
// without Tesseract support.
type TesseractConfig struct {
	// Language is the recognition language, "+"-separated for multiple
	// (e.g. "eng+fra"). Defaults to "eng".
	Language string `json:"language,omitempty"`

	// PSM is the page segmentation mode (0-13). Nil keeps the engine default.
	PSM *int `json:"psm,omitempty"`

	// OEM is the OCR engine mode (0-3). Nil keeps the engine default.
	OEM *int `json:"oem,omitempty"`

	// CharWhitelist restricts recognition to the given characters.
	CharWhitelist string `json:"tessedit_char_whitelist,omitempty"`

	// EnableTableDetection turns on word-geometry table detection.
	EnableTableDetection bool `json:"enable_table_detection,omitempty"`

	// TableMinConfidence is the minimum word confidence (0-1) for a word to
	// participate in table detection. Defaults to 0.5.
	TableMinConfidence float64 `json:"table_min_confidence,omitempty"`
}
