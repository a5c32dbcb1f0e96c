package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile reads a settings document. The format follows the extension:
// .yaml, .yml or .json.
func FromFile(path string) (Config, error) {
	var parse func([]byte) (Config, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parse = FromYAML
	case ".json":
		parse = FromJSON
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return parse(data)
}

// FromYAML parses a YAML document.
func FromYAML(data []byte) (Config, error) {
	return decode("yaml", data, yaml.Unmarshal)
}

// FromJSON parses a JSON document.
func FromJSON(data []byte) (Config, error) {
	return decode("json", data, json.Unmarshal)
}

func decode(format string, data []byte, unmarshal func([]byte, any) error) (Config, error) {
	var values map[string]any
	if err := unmarshal(data, &values); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(values), nil
}

// Load reads a settings file and decodes it over DefaultSettings.
func Load(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return Decode(cfg), nil
}
