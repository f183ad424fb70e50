package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// BaseURL is the public prefix encoded into QR images: {BaseURL}/{id}.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	// MaxScans is the scan ceiling before a code reports LIMIT_EXCEEDED.
	MaxScans int `json:"maxScans" yaml:"maxScans"`
	// CodeLength is the issued token length in characters.
	CodeLength int `json:"codeLength" yaml:"codeLength"`
	// QRDir is where issued QR PNGs are written. Relative paths resolve
	// against the data directory.
	QRDir string `json:"qrDir" yaml:"qrDir"`
	// ListLimit caps admin listing responses when the caller gives none.
	ListLimit int `json:"listLimit" yaml:"listLimit"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		BaseURL:    "http://localhost:8000",
		MaxScans:   5,
		CodeLength: 24,
		QRDir:      "qr",
		ListLimit:  500,
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
