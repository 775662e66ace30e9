package chunk

import (
	"fmt"
	"sort"
)

// Reduction selects how aggressively low-information tokens are deleted
// before chunking.
type Reduction string

// Token reduction modes.
const (
	ReduceNone       Reduction = "none"
	ReduceModerate   Reduction = "moderate"
	ReduceAggressive Reduction = "aggressive"
)

// Config controls chunking.
type Config struct {
	// MaxChars is the maximum chunk size in bytes of text.
	MaxChars int `json:"max_chars"`

	// MaxOverlap is how many bytes consecutive chunks share.
	// Must satisfy 0 <= MaxOverlap < MaxChars.
	MaxOverlap int `json:"max_overlap"`

	// Preset names a predefined MaxChars/MaxOverlap pair. When set it
	// overrides both fields.
	Preset string `json:"preset,omitempty"`

	// TokenReduction deletes low-information tokens before chunking.
	TokenReduction Reduction `json:"token_reduction,omitempty"`

	// PreserveImportantWords protects capitalized and technical tokens
	// from token reduction.
	PreserveImportantWords bool `json:"preserve_important_words"`

	// Language selects the stopword list for token reduction.
	Language string `json:"language,omitempty"`

	// Embedding selects the embedding model chunks are destined for.
	// Embedding itself is deferred to the caller.
	Embedding *EmbeddingConfig `json:"embedding,omitempty"`
}

// DefaultConfig returns the chunking defaults.
func DefaultConfig() Config {
	return Config{
		MaxChars:               1000,
		MaxOverlap:             200,
		TokenReduction:         ReduceNone,
		PreserveImportantWords: true,
	}
}

// presets are the named MaxChars/MaxOverlap pairs.
var presets = map[string][2]int{
	"default":       {1000, 200},
	"rag":           {512, 128},
	"search":        {800, 100},
	"summarization": {2000, 200},
}

// ListPresets returns the available chunking preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve applies the preset, fills defaults, and validates.
func (c Config) resolve() (Config, error) {
	if c.Preset != "" {
		p, ok := presets[c.Preset]
		if !ok {
			return c, fmt.Errorf("unknown chunking preset %q", c.Preset)
		}
		c.MaxChars, c.MaxOverlap = p[0], p[1]
	}
	if c.MaxChars == 0 {
		c.MaxChars = DefaultConfig().MaxChars
		if c.MaxOverlap == 0 {
			c.MaxOverlap = DefaultConfig().MaxOverlap
		}
	}
	if c.TokenReduction == "" {
		c.TokenReduction = ReduceNone
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.MaxChars <= 0 {
		return fmt.Errorf("max_chars must be positive, got %d", c.MaxChars)
	}
	if c.MaxOverlap < 0 || c.MaxOverlap >= c.MaxChars {
		return fmt.Errorf("max_overlap must satisfy 0 <= max_overlap < max_chars, got overlap %d for max_chars %d", c.MaxOverlap, c.MaxChars)
	}
	switch c.TokenReduction {
	case ReduceNone, ReduceModerate, ReduceAggressive:
	default:
		return fmt.Errorf("unknown token_reduction mode %q", c.TokenReduction)
	}
	return nil
}

// EmbeddingConfig identifies the embedding model chunks will be fed to.
type EmbeddingConfig struct {
	// Model is the embedding model identifier.
	Model string `json:"model"`

	// Dimensions is the embedding vector width.
	Dimensions int `json:"dimensions"`

	// Normalize requests unit-length vectors.
	Normalize bool `json:"normalize"`
}

var embeddingPresets = map[string]EmbeddingConfig{
	"fast": {
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions: 384,
		Normalize:  true,
	},
	"balanced": {
		Model:      "sentence-transformers/all-mpnet-base-v2",
		Dimensions: 768,
		Normalize:  true,
	},
	"quality": {
		Model:      "BAAI/bge-large-en-v1.5",
		Dimensions: 1024,
		Normalize:  true,
	},
}

// ListEmbeddingPresets returns the available embedding preset names, sorted.
func ListEmbeddingPresets() []string {
	names := make([]string, 0, len(embeddingPresets))
	for name := range embeddingPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetEmbeddingPreset looks up an embedding preset by name.
func GetEmbeddingPreset(name string) (EmbeddingConfig, bool) {
	cfg, ok := embeddingPresets[name]
	return cfg, ok
}
