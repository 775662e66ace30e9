package scribe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config file names DiscoverConfig looks for, in order.
var configFileNames = []string{"scribe.json", "scribe.yaml", "scribe.yml"}

// LoadConfig reads an extraction config from a JSON or YAML file, chosen by
// extension.
func LoadConfig(path string) (*ExtractionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(KindIO, err, "reading config %s", path)
	}

	cfg := &ExtractionConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// The config types carry json tags only, so YAML goes through a
		// generic decode and a JSON round-trip to honor them.
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, WrapError(KindSerialization, err, "parsing yaml config %s", path)
		}
		jsonData, err := json.Marshal(doc)
		if err != nil {
			return nil, WrapError(KindSerialization, err, "converting yaml config %s", path)
		}
		if err := json.Unmarshal(jsonData, cfg); err != nil {
			return nil, WrapError(KindSerialization, err, "parsing yaml config %s", path)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, WrapError(KindSerialization, err, "parsing json config %s", path)
		}
	}
	return cfg, nil
}

// DiscoverConfig walks from the working directory toward the filesystem root
// looking for a scribe.json, scribe.yaml, or scribe.yml file and loads the
// first one found. Returns (nil, nil) when no config file exists.
func DiscoverConfig() (*ExtractionConfig, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, WrapError(KindIO, err, "resolving working directory")
	}
	return discoverConfigFrom(dir)
}

func discoverConfigFrom(dir string) (*ExtractionConfig, error) {
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return LoadConfig(path)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
